package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"example.com/activitylog/internal/domain"
	"example.com/activitylog/internal/events"
)

// MirrorHandler appends every ActivityLogged event to a replica store. Redelivered events are
// dropped by event id for the lifetime of the handler.
type MirrorHandler struct {
	store domain.ActivityStore

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewMirrorHandler constructs a MirrorHandler writing to store.
func NewMirrorHandler(store domain.ActivityStore) *MirrorHandler {
	return &MirrorHandler{store: store, seen: make(map[string]struct{})}
}

// Handle implements Handler. Unknown event types are acknowledged without side effects. Payloads
// that cannot become a record are returned as PermanentError; store failures are returned as is so
// the processor retries them.
func (h *MirrorHandler) Handle(ctx context.Context, msg Message) error {
	if msg.EventType != events.EventActivityLogged {
		return nil
	}

	var event events.ActivityLogged
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return Permanent(fmt.Errorf("decode activity logged: %w", err))
	}
	id := event.EventID
	if id == "" {
		id = msg.EventID
	}
	if id != "" && h.wasSeen(id) {
		duplicateCounter.Inc()
		return nil
	}

	record, err := event.Record()
	if err != nil {
		return Permanent(err)
	}
	if err := h.store.Append(ctx, record); err != nil {
		return err
	}
	if id != "" {
		h.markSeen(id)
	}
	return nil
}

func (h *MirrorHandler) wasSeen(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.seen[id]
	return ok
}

func (h *MirrorHandler) markSeen(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen[id] = struct{}{}
}
