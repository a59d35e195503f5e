package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"

	"example.com/activitylog/internal/config"
	"example.com/activitylog/internal/consumer"
	"example.com/activitylog/internal/domain"
	"example.com/activitylog/internal/observability"
	pgstore "example.com/activitylog/internal/persistence/postgres"
	"example.com/activitylog/internal/persistence/sqlite"
	httptransport "example.com/activitylog/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.ValidateMirror(); err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store domain.ActivityStore
	switch cfg.MirrorBackend {
	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()
		store = pgstore.NewRepository(pool)
	default:
		repo, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			log.Fatalf("failed to open sqlite mirror: %v", err)
		}
		defer repo.Close()
		store = repo
	}

	handler := consumer.NewMirrorHandler(observability.InstrumentStore(store, "mirror-"+cfg.MirrorBackend))

	metricsSrv := httptransport.NewServer(httptransport.ServerConfig{
		Address:     cfg.MetricsAddress,
		ReadTimeout: 5 * time.Second,
		IdleTimeout: 60 * time.Second,
	}, promhttp.Handler())

	go func() {
		log.Printf("mirror metrics listening on %s", cfg.MetricsAddress)
		if err := httptransport.Serve(ctx, metricsSrv, 10*time.Second); err != nil {
			log.Printf("metrics server error: %v", err)
		}
	}()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:         cfg.KafkaBrokers,
		GroupID:         cfg.KafkaGroupID,
		Topic:           cfg.KafkaTopic,
		MinBytes:        1,
		MaxBytes:        10e6,
		CommitInterval:  time.Second,
		ReadLagInterval: -1,
	})

	proc := consumer.NewProcessor(reader, handler)
	defer reader.Close()

	log.Printf("mirror started (topic=%s, group=%s, backend=%s)", cfg.KafkaTopic, cfg.KafkaGroupID, cfg.MirrorBackend)
	if err := proc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("mirror stopped with error: %v", err)
	}
	log.Println("mirror shutdown complete")
}
