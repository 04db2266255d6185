package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	audit "github.com/akilalakshman/esignet/pkg/platform/audit"
)

const selectColumns = `
	SELECT id, category, timestamp, action, subject, relying_party_id,
		   client_id, transaction_id, decision, reason, request_id
	FROM audit_events`

// Store implements audit.Store using PostgreSQL.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append inserts an audit event. Events that already carry an id are
// inserted idempotently, so redelivered messages are harmless.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := uuid.New()
	if event.ID != "" {
		parsed, err := uuid.Parse(event.ID)
		if err != nil {
			return fmt.Errorf("parse audit event id: %w", err)
		}
		eventID = parsed
	}

	query := `
		INSERT INTO audit_events (
			id, category, timestamp, action, subject, relying_party_id,
			client_id, transaction_id, decision, reason, request_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		eventID,
		string(event.Category),
		event.Timestamp,
		event.Action,
		event.Subject,
		event.RelyingParty,
		event.ClientID,
		event.TransactionID,
		event.Decision,
		event.Reason,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListBySubject returns events for one pseudonymous subject, newest first.
func (s *Store) ListBySubject(ctx context.Context, subject string) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE subject = $1 ORDER BY timestamp DESC`, subject)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListByTransaction returns the trail of one kyc transaction, oldest first.
func (s *Store) ListByTransaction(ctx context.Context, transactionID string) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE transaction_id = $1 ORDER BY timestamp ASC`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListRecent returns up to limit of the newest events in category, or across
// all categories when category is empty.
func (s *Store) ListRecent(ctx context.Context, category audit.EventCategory, limit int) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		selectColumns+` WHERE ($1 = '' OR category = $1) ORDER BY timestamp DESC LIMIT $2`,
		string(category), pageSize(limit))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

func pageSize(limit int) int {
	switch {
	case limit <= 0:
		return defaultPageSize
	case limit > maxPageSize:
		return maxPageSize
	default:
		return limit
	}
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event
	for rows.Next() {
		var (
			id       uuid.UUID
			category string
			event    audit.Event
		)
		err := rows.Scan(
			&id,
			&category,
			&event.Timestamp,
			&event.Action,
			&event.Subject,
			&event.RelyingParty,
			&event.ClientID,
			&event.TransactionID,
			&event.Decision,
			&event.Reason,
			&event.RequestID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.ID = id.String()
		event.Category = audit.EventCategory(category)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
