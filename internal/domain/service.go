// Package domain defines the activity model, period filtering and aggregation for the activity log.
package domain

import (
	"context"
	"log"
	"time"
)

// ActivityStore is the append-only tabular backend. Implementations never cache across calls.
type ActivityStore interface {
	Append(ctx context.Context, record Record) error
	ReadAll(ctx context.Context) ([]Record, error)
}

// Publisher announces successfully logged activities to downstream consumers.
type Publisher interface {
	PublishActivityLogged(ctx context.Context, sessionID string, record Record) error
}

// Session carries the per-user state that lives between requests.
type Session struct {
	ID            string
	Subcategories *SubcategoryRegistry
	CreatedAt     time.Time
}

// NewSession builds a Session whose registry is seeded from seed (or the defaults).
func NewSession(id string, seed []string) *Session {
	return &Session{
		ID:            id,
		Subcategories: NewSubcategoryRegistry(seed),
		CreatedAt:     time.Now().UTC(),
	}
}

// Option configures optional Service behaviour.
type Option func(*Service)

// WithPublisher sets the publisher notified after each successful append.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithLogger overrides the logger used to report publish failures.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// Service orchestrates activity workflows.
type Service struct {
	store     ActivityStore
	publisher Publisher
	logger    *log.Logger
	now       func() time.Time
}

// NewService constructs a Service.
func NewService(store ActivityStore, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: log.New(log.Writer(), "[domain] ", log.LstdFlags),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LogActivityInput captures the payload from the API layer.
type LogActivityInput struct {
	Date        time.Time
	Start       TimeOfDay
	End         TimeOfDay
	Category    string
	SubCategory string
	Comments    string
}

// LogActivity validates and appends one record, then registers its sub-category with the session.
// A failed append leaves the session untouched and is never retried.
func (s *Service) LogActivity(ctx context.Context, session *Session, input LogActivityInput) (Record, error) {
	record, err := NewRecord(input.Date, input.Start, input.End, input.Category, input.SubCategory, input.Comments)
	if err != nil {
		return Record{}, err
	}

	if err := s.store.Append(ctx, record); err != nil {
		return Record{}, err
	}

	sessionID := ""
	if session != nil {
		session.Subcategories.Register(record.SubCategory)
		sessionID = session.ID
	}

	if s.publisher != nil {
		if err := s.publisher.PublishActivityLogged(ctx, sessionID, record); err != nil {
			s.logger.Printf("publish activity logged failed (date=%s, category=%s): %v", record.Date.Format(DateLayout), record.Category, err)
		}
	}
	return record, nil
}

// ListActivities returns every stored record in insertion order.
func (s *Service) ListActivities(ctx context.Context) ([]Record, error) {
	return s.store.ReadAll(ctx)
}

// PeriodReport is the aggregated view of one period.
type PeriodReport struct {
	Filter     Filter
	Label      string
	Summary    Summary
	StoreEmpty bool
}

// Summarize reads every record, keeps those inside the filter and aggregates them.
func (s *Service) Summarize(ctx context.Context, filter Filter) (PeriodReport, error) {
	records, err := s.store.ReadAll(ctx)
	if err != nil {
		return PeriodReport{}, err
	}
	return PeriodReport{
		Filter:     filter,
		Label:      filter.Label(),
		Summary:    Aggregate(filter.Apply(records)),
		StoreEmpty: len(records) == 0,
	}, nil
}

// Today returns the current local calendar date.
func (s *Service) Today() time.Time {
	return CalendarDate(s.now())
}
