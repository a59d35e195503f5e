package consumer

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Message outcomes used as metric labels.
const (
	outcomeProcessed    = "processed"
	outcomeHandlerError = "handler_error"
	outcomeDecodeError  = "decode_error"
	outcomeRejected     = "rejected"
)

var (
	messagesCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activitylog",
		Subsystem: "consumer",
		Name:      "messages_total",
		Help:      "Kafka messages seen by the mirror, labeled by topic and outcome.",
	}, []string{"topic", "outcome"})

	duplicateCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "activitylog",
		Subsystem: "consumer",
		Name:      "duplicate_events_total",
		Help:      "ActivityLogged events skipped because their id was already mirrored.",
	})

	lastMessageGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "activitylog",
		Subsystem: "consumer",
		Name:      "last_message_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successfully processed message per topic.",
	}, []string{"topic"})
)

func init() {
	prometheus.MustRegister(messagesCounter, duplicateCounter, lastMessageGauge)
}

func record(topic, outcome string) {
	messagesCounter.WithLabelValues(topic, outcome).Inc()
}

func recordProcessed(msg Message) {
	record(msg.Topic, outcomeProcessed)
	if !msg.Timestamp.IsZero() {
		lastMessageGauge.WithLabelValues(msg.Topic).Set(float64(msg.Timestamp.Unix()))
	}
}
