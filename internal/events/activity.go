// Package events publishes activity log events to Kafka.
package events

import (
	"time"

	"example.com/activitylog/internal/domain"
)

// EventActivityLogged is the event type header value for ActivityLogged.
const EventActivityLogged = "activity.logged"

// ActivityLogged is emitted after a record has been appended to the store.
type ActivityLogged struct {
	EventID         string    `json:"event_id"`
	SessionID       string    `json:"session_id,omitempty"`
	Date            string    `json:"date"`
	StartTime       string    `json:"start_time"`
	EndTime         string    `json:"end_time"`
	Category        string    `json:"category"`
	SubCategory     string    `json:"sub_category"`
	Comments        string    `json:"comments,omitempty"`
	DurationMinutes int       `json:"duration_minutes"`
	OccurredAt      time.Time `json:"occurred_at"`
}

func newActivityLogged(eventID, sessionID string, record domain.Record, at time.Time) ActivityLogged {
	row := record.Row()
	return ActivityLogged{
		EventID:         eventID,
		SessionID:       sessionID,
		Date:            row[0],
		StartTime:       row[1],
		EndTime:         row[2],
		Category:        row[3],
		SubCategory:     row[4],
		Comments:        row[5],
		DurationMinutes: record.DurationMinutes(),
		OccurredAt:      at.UTC(),
	}
}

// Record rebuilds the domain record carried by the event.
func (e ActivityLogged) Record() (domain.Record, error) {
	return domain.ParseRow(0, []string{e.Date, e.StartTime, e.EndTime, e.Category, e.SubCategory, e.Comments})
}
