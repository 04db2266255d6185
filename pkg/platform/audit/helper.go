package audit

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5/middleware"
)

// Logger writes an audit event to the structured log and forwards it to an
// optional emitter.
type Logger struct {
	textLogger *slog.Logger
	emitter    Emitter
}

// NewLogger creates an audit logger. Either argument may be nil.
func NewLogger(textLogger *slog.Logger, emitter Emitter) *Logger {
	return &Logger{
		textLogger: textLogger,
		emitter:    emitter,
	}
}

// Log stamps the action, category and request id onto e, logs it, and emits
// it. Emit failures are logged, never returned.
func (l *Logger) Log(ctx context.Context, action AuditEvent, e Event) {
	if l == nil {
		return
	}
	e.Action = string(action)
	e.Category = action.Category()
	if e.RequestID == "" {
		e.RequestID = middleware.GetReqID(ctx)
	}

	if l.textLogger != nil {
		l.textLogger.InfoContext(ctx, e.Action,
			"log_type", "audit",
			"category", e.Category,
			"subject", e.Subject,
			"relying_party_id", e.RelyingParty,
			"client_id", e.ClientID,
			"transaction_id", e.TransactionID,
			"decision", e.Decision,
			"reason", e.Reason,
			"request_id", e.RequestID,
		)
	}

	if l.emitter == nil {
		return
	}
	if err := l.emitter.Emit(ctx, e); err != nil && l.textLogger != nil {
		l.textLogger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"event", e.Action,
		)
	}
}
