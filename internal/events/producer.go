package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"

	"example.com/activitylog/internal/domain"
)

var publishCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "activitylog",
	Subsystem: "events",
	Name:      "published_total",
	Help:      "Activity events handed to Kafka, labeled by outcome.",
}, []string{"outcome"})

func init() {
	prometheus.MustRegister(publishCounter)
}

type messageWriter interface {
	WriteMessages(context.Context, ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes ActivityLogged events to a single topic, keyed by activity date so one day's
// entries stay ordered within a partition.
type KafkaPublisher struct {
	writer messageWriter
	now    func() time.Time
}

// NewKafkaPublisher creates a synchronous publisher for topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		Async:        false,
	}
	return newKafkaPublisher(writer)
}

func newKafkaPublisher(writer messageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, now: time.Now}
}

// PublishActivityLogged implements domain.Publisher.
func (p *KafkaPublisher) PublishActivityLogged(ctx context.Context, sessionID string, record domain.Record) error {
	at := p.now()
	event := newActivityLogged(uuid.NewString(), sessionID, record, at)
	body, err := json.Marshal(event)
	if err != nil {
		publishCounter.WithLabelValues("encode_error").Inc()
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.Date),
		Value: body,
		Time:  at.UTC(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventActivityLogged)},
			{Key: "event_id", Value: []byte(event.EventID)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		publishCounter.WithLabelValues("failed").Inc()
		return err
	}
	publishCounter.WithLabelValues("delivered").Inc()
	return nil
}

// Close flushes and releases the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher drops events. It is used when no brokers are configured.
type NoopPublisher struct{}

// PublishActivityLogged implements domain.Publisher.
func (NoopPublisher) PublishActivityLogged(context.Context, string, domain.Record) error { return nil }
