// Package kafka publishes audit events to a Kafka topic. The audit sink
// consumer persists them to PostgreSQL.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/akilalakshman/esignet/internal/platform/kafka/producer"
	audit "github.com/akilalakshman/esignet/pkg/platform/audit"
)

// Producer is the subset of producer.Producer the store needs.
type Producer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// Store implements audit.Store by producing one JSON record per event, keyed
// by event id so the sink can insert idempotently.
type Store struct {
	producer Producer
	topic    string
}

func New(p Producer, topic string) *Store {
	return &Store{producer: p, topic: topic}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	err = s.producer.Produce(ctx, &producer.Message{
		Topic: s.topic,
		Key:   []byte(event.ID),
		Value: value,
		Headers: map[string]string{
			"action":   event.Action,
			"category": string(event.Category),
		},
	})
	if err != nil {
		return fmt.Errorf("publish audit event: %w", err)
	}
	return nil
}
