// Package cleanup evicts expired entries from in-process stores: kyc payloads
// that were never exchanged and idle rate limit buckets.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ExpiringStore removes entries that expired before now.
type ExpiringStore interface {
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

type Service struct {
	store    ExpiringStore
	name     string
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Service)

// WithInterval overrides the sweep interval when greater than zero.
func WithInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithName labels log lines and errors with the store being swept.
func WithName(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.name = name
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func New(store ExpiringStore, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("cleanup: store is required")
	}
	s := &Service{
		store:    store,
		name:     "kyc payloads",
		interval: time.Minute,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start sweeps on every tick until ctx is cancelled. A failed sweep is logged
// and the loop continues.
func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := s.RunOnce(ctx)
			if err != nil {
				s.logger.ErrorContext(ctx, "cleanup failed", "store", s.name, "error", err)
				continue
			}
			if n > 0 {
				s.logger.DebugContext(ctx, "expired entries removed", "store", s.name, "count", n)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunOnce performs a single sweep.
func (s *Service) RunOnce(ctx context.Context) (int, error) {
	n, err := s.store.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("delete expired %s: %w", s.name, err)
	}
	return n, nil
}
