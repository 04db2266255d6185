package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Admin checks broker reachability and provisions the audit topic.
type Admin struct {
	client *kgo.Client
	admin  *kadm.Client
}

// NewAdmin connects lazily; no broker is contacted until the first call.
func NewAdmin(brokers []string) (*Admin, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers not configured")
	}
	client, err := kgo.NewClient(kgo.SeedBrokers(brokers...))
	if err != nil {
		return nil, fmt.Errorf("create kafka admin client: %w", err)
	}
	return &Admin{client: client, admin: kadm.NewClient(client)}, nil
}

// Check succeeds when the cluster answers a metadata request with at least
// one broker.
func (a *Admin) Check(ctx context.Context) error {
	brokers, err := a.admin.ListBrokers(ctx)
	if err != nil {
		return fmt.Errorf("list kafka brokers: %w", err)
	}
	if len(brokers) == 0 {
		return errors.New("no kafka brokers reachable")
	}
	return nil
}

// EnsureTopic creates topic if it does not exist yet.
func (a *Admin) EnsureTopic(ctx context.Context, topic string, partitions int32, replicationFactor int16) error {
	resp, err := a.admin.CreateTopics(ctx, partitions, replicationFactor, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, r := range resp.Sorted() {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

func (a *Admin) Close() {
	a.admin.Close()
}
