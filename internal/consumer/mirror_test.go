package consumer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/activitylog/internal/domain"
	"example.com/activitylog/internal/events"
	"example.com/activitylog/internal/persistence/memory"
)

func loggedMessage(t *testing.T, event events.ActivityLogged) Message {
	t.Helper()
	body, err := json.Marshal(event)
	require.NoError(t, err)
	return Message{Topic: "activity_logged", EventType: events.EventActivityLogged, EventID: event.EventID, Payload: body}
}

func TestMirrorHandlerAppendsOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRepository()
	handler := NewMirrorHandler(store)

	msg := loggedMessage(t, events.ActivityLogged{
		EventID:     "evt-1",
		Date:        "2024-03-15",
		StartTime:   "09:00",
		EndTime:     "09:45",
		Category:    "Productive",
		SubCategory: "Read Book",
	})
	require.NoError(t, handler.Handle(ctx, msg))
	require.NoError(t, handler.Handle(ctx, msg))

	records, err := store.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), records[0].Date)
	require.Equal(t, 45, records[0].DurationMinutes())
	require.Equal(t, domain.CategoryProductive, records[0].Category)
}

func TestMirrorHandlerRejectsInvalidRecord(t *testing.T) {
	handler := NewMirrorHandler(memory.NewRepository())
	msg := loggedMessage(t, events.ActivityLogged{EventID: "evt-2", Date: "2024-03-15", StartTime: "09:00", EndTime: "09:45", Category: "Leisure"})

	err := handler.Handle(context.Background(), msg)
	var perm *PermanentError
	require.ErrorAs(t, err, &perm)
	var perr *domain.ParseError
	require.ErrorAs(t, err, &perr)
	require.ErrorIs(t, err, domain.ErrInvalidCategory)
}

func TestMirrorHandlerIgnoresOtherEvents(t *testing.T) {
	store := memory.NewRepository()
	handler := NewMirrorHandler(store)

	require.NoError(t, handler.Handle(context.Background(), Message{EventType: "activity.deleted", Payload: []byte(`{}`)}))
	records, err := store.ReadAll(context.Background())
	require.NoError(t, err)
	require.Empty(t, records)
}
