// Package api exposes HTTP handlers for the activity log.
package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"example.com/activitylog/internal/auth"
	"example.com/activitylog/internal/domain"
	"example.com/activitylog/internal/export"
	"example.com/activitylog/internal/session"
)

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service         *domain.Service
	sessions        *session.Manager
	authEnabled     bool
	sameYearDefault bool
	timeout         time.Duration
	logger          *log.Logger
}

// Option configures optional Handler behaviour.
type Option func(*Handler)

// WithAuth makes every endpoint require bearer claims carrying the matching scope.
func WithAuth(enabled bool) Option {
	return func(h *Handler) {
		h.authEnabled = enabled
	}
}

// WithSameYearDefault sets the year check used when a summary request omits same_year.
func WithSameYearDefault(enabled bool) Option {
	return func(h *Handler) {
		h.sameYearDefault = enabled
	}
}

// WithBackendTimeout bounds each store round trip.
func WithBackendTimeout(d time.Duration) Option {
	return func(h *Handler) {
		h.timeout = d
	}
}

// WithLogger overrides the logger used for server-side failures.
func WithLogger(logger *log.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, sessions *session.Manager, opts ...Option) *Handler {
	h := &Handler{
		service:  service,
		sessions: sessions,
		logger:   log.New(log.Writer(), "[api] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/activities", h.activities)
	mux.HandleFunc("/v1/activities/summary", h.summary)
	mux.HandleFunc("/v1/activities/export", h.exportCSV)
	mux.HandleFunc("/v1/subcategories", h.subcategories)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) activities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createActivity(w, r)
	case http.MethodGet:
		h.listActivities(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) createActivity(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, auth.ScopeActivitiesWrite) {
		return
	}

	var req CreateActivityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	input, err := req.Input()
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	sess := h.sessions.FromRequest(w, r)
	ctx, cancel := h.storeContext(r.Context())
	defer cancel()

	record, err := h.service.LogActivity(ctx, sess, input)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecordView(record))
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, auth.ScopeActivitiesRead, auth.ScopeActivitiesWrite) {
		return
	}

	ctx, cancel := h.storeContext(r.Context())
	defer cancel()

	records, err := h.service.ListActivities(ctx)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	items := make([]RecordView, 0, len(records))
	for _, rec := range records {
		items = append(items, toRecordView(rec))
	}
	writeJSON(w, http.StatusOK, ListActivitiesResponse{Items: items})
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !h.authorize(w, r, auth.ScopeActivitiesRead, auth.ScopeActivitiesWrite) {
		return
	}

	query := r.URL.Query()
	period, err := domain.ParsePeriod(query.Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	reference := h.service.Today()
	if raw := strings.TrimSpace(query.Get("date")); raw != "" {
		reference, err = domain.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "date must be YYYY-MM-DD")
			return
		}
	}

	sameYear := h.sameYearDefault
	if raw := query.Get("same_year"); raw != "" {
		sameYear, err = strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "same_year must be a boolean")
			return
		}
	}

	filter, err := domain.NewFilter(period, reference)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}
	if sameYear {
		filter = filter.WithSameYear()
	}

	ctx, cancel := h.storeContext(r.Context())
	defer cancel()

	report, err := h.service.Summarize(ctx, filter)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(report))
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !h.authorize(w, r, auth.ScopeActivitiesRead, auth.ScopeActivitiesWrite) {
		return
	}

	ctx, cancel := h.storeContext(r.Context())
	defer cancel()

	records, err := h.service.ListActivities(ctx)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	if err := export.WriteCSV(w, records); err != nil {
		h.logger.Printf("export failed after headers were sent: %v", err)
	}
}

func (h *Handler) subcategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !h.authorize(w, r, auth.ScopeActivitiesRead, auth.ScopeActivitiesWrite) {
		return
	}

	sess := h.sessions.FromRequest(w, r)
	query := r.URL.Query()
	var items []string
	if query.Has("q") {
		items = sess.Subcategories.Suggest(query.Get("q"))
	} else {
		items = sess.Subcategories.Labels()
	}
	writeJSON(w, http.StatusOK, SubcategoriesResponse{Items: items})
}

// authorize enforces one of scopes when auth is enabled. It writes the error response and returns
// false when the request must stop.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, scopes ...string) bool {
	if !h.authEnabled {
		return true
	}
	switch err := auth.RequireScope(r.Context(), scopes...); {
	case err == nil:
		return true
	case errors.Is(err, auth.ErrMissingToken):
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	default:
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	}
	return false
}

func (h *Handler) storeContext(parent context.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, h.timeout)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var perr *domain.ParseError
	var serr *domain.StoreError
	switch {
	case errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, domain.ErrMissingDate),
		errors.Is(err, domain.ErrInvalidTime),
		errors.Is(err, domain.ErrInvalidPeriod):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.As(err, &perr), errors.Is(err, domain.ErrHeaderMismatch):
		h.logger.Printf("stored data unreadable: %v", err)
		writeError(w, http.StatusInternalServerError, "data_corrupt", err.Error())
	case errors.As(err, &serr):
		h.logger.Printf("store failure: %v", err)
		writeError(w, http.StatusBadGateway, "store_error", err.Error())
	default:
		h.logger.Printf("unexpected failure: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}
