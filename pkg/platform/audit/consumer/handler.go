// Package consumer drains the audit topic into a durable store.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/akilalakshman/esignet/internal/platform/kafka/consumer"
	audit "github.com/akilalakshman/esignet/pkg/platform/audit"
)

// errMalformed marks records that can never be stored. They are committed so
// one bad record cannot stall the partition.
var errMalformed = errors.New("malformed audit record")

// Handler implements consumer.Handler for audit records.
type Handler struct {
	store  audit.Store
	logger *slog.Logger
}

func NewHandler(store audit.Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Handle appends one record. Store failures are returned so the offset is not
// committed and the record is redelivered; the postgres store ignores
// duplicate ids.
func (h *Handler) Handle(ctx context.Context, msg *consumer.Message) error {
	event, err := decode(msg)
	if err != nil {
		h.logger.ErrorContext(ctx, "discarding audit record",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"error", err,
		)
		return nil
	}

	if err := h.store.Append(ctx, event); err != nil {
		h.logger.ErrorContext(ctx, "audit sink append failed",
			"event_id", event.ID,
			"action", event.Action,
			"offset", msg.Offset,
			"error", err,
		)
		return fmt.Errorf("store audit event %s: %w", event.ID, err)
	}
	h.logger.DebugContext(ctx, "audit event stored", "event_id", event.ID, "action", event.Action)
	return nil
}

// decode rebuilds an event from a record produced by the kafka audit store:
// the key is the event id, the action header backs up the body.
func decode(msg *consumer.Message) (audit.Event, error) {
	id, err := uuid.ParseBytes(msg.Key)
	if err != nil {
		return audit.Event{}, fmt.Errorf("%w: key %q is not an event id", errMalformed, msg.Key)
	}

	var event audit.Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return audit.Event{}, fmt.Errorf("%w: %v", errMalformed, err)
	}
	event.ID = id.String()

	if event.Action == "" {
		event.Action = msg.Headers["action"]
	}
	if event.Action == "" {
		return audit.Event{}, fmt.Errorf("%w: event %s has no action", errMalformed, event.ID)
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = msg.Timestamp
	}
	return event, nil
}
