// Package observability exposes Prometheus instrumentation for the activity log.
package observability

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"example.com/activitylog/internal/domain"
)

var (
	storeOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activitylog",
		Subsystem: "store",
		Name:      "operations_total",
		Help:      "Store operations by backend, operation and outcome.",
	}, []string{"backend", "op", "outcome"})

	storeLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "activitylog",
		Subsystem: "store",
		Name:      "operation_duration_seconds",
		Help:      "Latency of store round trips.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"backend", "op"})

	rowsRead = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "activitylog",
		Subsystem: "store",
		Name:      "rows_last_read",
		Help:      "Number of records returned by the most recent successful read.",
	})

	lastAppendGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "activitylog",
		Subsystem: "store",
		Name:      "last_append_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successful append.",
	})
)

func init() {
	prometheus.MustRegister(storeOperations, storeLatency, rowsRead, lastAppendGauge)
}

// InstrumentedStore decorates an ActivityStore with metrics.
type InstrumentedStore struct {
	next    domain.ActivityStore
	backend string
	now     func() time.Time
}

// InstrumentStore wraps store, labelling its metrics with backend.
func InstrumentStore(store domain.ActivityStore, backend string) *InstrumentedStore {
	return &InstrumentedStore{next: store, backend: backend, now: time.Now}
}

// Append implements domain.ActivityStore.
func (s *InstrumentedStore) Append(ctx context.Context, record domain.Record) error {
	start := s.now()
	err := s.next.Append(ctx, record)
	s.observe("append", start, err)
	if err == nil {
		RecordAppended(s.now())
	}
	return err
}

// ReadAll implements domain.ActivityStore.
func (s *InstrumentedStore) ReadAll(ctx context.Context) ([]domain.Record, error) {
	start := s.now()
	records, err := s.next.ReadAll(ctx)
	s.observe("read_all", start, err)
	if err == nil {
		rowsRead.Set(float64(len(records)))
	}
	return records, err
}

func (s *InstrumentedStore) observe(op string, start time.Time, err error) {
	storeLatency.WithLabelValues(s.backend, op).Observe(s.now().Sub(start).Seconds())
	storeOperations.WithLabelValues(s.backend, op, Outcome(err)).Inc()
}

// Outcome classifies an error for metric labels.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var perr *domain.ParseError
	if errors.As(err, &perr) {
		return "parse_error"
	}
	return "store_error"
}

// RecordAppended updates the append watermark gauge.
func RecordAppended(ts time.Time) {
	if ts.IsZero() {
		return
	}
	lastAppendGauge.Set(float64(ts.Unix()))
}
