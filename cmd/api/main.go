package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"example.com/activitylog/internal/api"
	"example.com/activitylog/internal/auth"
	"example.com/activitylog/internal/config"
	"example.com/activitylog/internal/domain"
	"example.com/activitylog/internal/events"
	"example.com/activitylog/internal/observability"
	"example.com/activitylog/internal/persistence/memory"
	pgstore "example.com/activitylog/internal/persistence/postgres"
	"example.com/activitylog/internal/persistence/sheets"
	"example.com/activitylog/internal/persistence/sqlite"
	"example.com/activitylog/internal/session"
	httptransport "example.com/activitylog/internal/transport/http"
	"example.com/activitylog/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closer, err := buildStore(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open %s store: %v", cfg.StoreBackend, err)
	}
	defer closer.Close()

	opts := []domain.Option{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer publisher.Close()
		opts = append(opts, domain.WithPublisher(publisher))
		log.Printf("publishing activity events to %s on %v", cfg.KafkaTopic, cfg.KafkaBrokers)
	} else {
		opts = append(opts, domain.WithPublisher(events.NoopPublisher{}))
	}

	service := domain.NewService(observability.InstrumentStore(store, cfg.StoreBackend), opts...)
	sessions := session.NewManager(cfg.SessionTTL, cfg.Subcategories)

	handler := api.NewHandler(service, sessions,
		api.WithAuth(cfg.AuthEnabled()),
		api.WithSameYearDefault(cfg.SameYearDefault),
		api.WithBackendTimeout(cfg.BackendTimeout),
	)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	web.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	// Basic request logger
	logger := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Printf("%s %s", r.Method, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}

	authMiddleware := auth.NewMiddleware(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer})

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.BackendTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}, logger(httptransport.CORS(cfg.CORSOrigin)(authMiddleware.Wrap(mux))))

	log.Printf("activity log listening on %s (store=%s, auth=%t)", cfg.HTTPAddress, cfg.StoreBackend, cfg.AuthEnabled())
	if err := httptransport.Serve(ctx, server, 15*time.Second); err != nil {
		log.Printf("server stopped with error: %v", err)
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

var noopCloser = closerFunc(func() error { return nil })

// buildStore opens the configured backend and verifies it is reachable before serving.
func buildStore(ctx context.Context, cfg config.Config) (domain.ActivityStore, io.Closer, error) {
	switch cfg.StoreBackend {
	case config.BackendSheets:
		id, err := sheets.SpreadsheetID(cfg.SheetURL)
		if err != nil {
			return nil, nil, err
		}
		creds := []byte(cfg.CredentialsJSON)
		if len(creds) == 0 {
			creds, err = os.ReadFile(cfg.CredentialsFile)
			if err != nil {
				return nil, nil, fmt.Errorf("read credentials: %w", err)
			}
		}
		repo, err := sheets.New(ctx, sheets.Config{
			SpreadsheetID:   id,
			SheetName:       cfg.SheetName,
			CredentialsJSON: creds,
			Timeout:         cfg.BackendTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := repo.EnsureHeader(ctx); err != nil {
			return nil, nil, err
		}
		return repo, noopCloser, nil

	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		repo := pgstore.NewRepository(pool)
		pingCtx, cancel := context.WithTimeout(ctx, cfg.BackendTimeout)
		defer cancel()
		if err := repo.Ping(pingCtx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repo, closerFunc(func() error { pool.Close(); return nil }), nil

	case config.BackendSQLite:
		repo, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo, nil

	case config.BackendMemory:
		log.Printf("using in-memory store; activities are lost on restart")
		return memory.NewRepository(), noopCloser, nil
	}
	return nil, nil, fmt.Errorf("%w: unknown STORE_BACKEND %q", config.ErrInvalidConfig, cfg.StoreBackend)
}
