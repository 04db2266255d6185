// Package publisher delivers audit events to a store, either inline or
// through a bounded buffer drained by one background worker.
package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	dErrors "github.com/akilalakshman/esignet/pkg/domain-errors"
	audit "github.com/akilalakshman/esignet/pkg/platform/audit"
	"github.com/akilalakshman/esignet/pkg/platform/audit/metrics"
)

const defaultPersistTimeout = 5 * time.Second

// ErrBufferFull is returned by Emit when the async buffer has no room.
var ErrBufferFull = dErrors.New(dErrors.CodeUnavailable, "audit buffer full")

// Publisher implements audit.Emitter.
type Publisher struct {
	store          audit.Store
	logger         *slog.Logger
	metrics        *metrics.Metrics
	persistTimeout time.Duration
	now            func() time.Time

	queue    chan audit.Event
	done     chan struct{}
	closeMu  sync.RWMutex
	closed   bool
	closeOne sync.Once
}

// PublisherOption configures the Publisher.
type PublisherOption func(*Publisher)

// WithAsyncBuffer queues up to size events for a background worker. Zero
// keeps delivery inline.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.queue = make(chan audit.Event, size)
		}
	}
}

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) { p.logger = logger }
}

func WithMetrics(m *metrics.Metrics) PublisherOption {
	return func(p *Publisher) { p.metrics = m }
}

// WithPersistTimeout bounds each background append.
func WithPersistTimeout(d time.Duration) PublisherOption {
	return func(p *Publisher) {
		if d > 0 {
			p.persistTimeout = d
		}
	}
}

func NewPublisher(store audit.Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		store:          store,
		logger:         slog.Default(),
		persistTimeout: defaultPersistTimeout,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.queue != nil {
		p.done = make(chan struct{})
		go p.drain()
	}
	return p
}

// Emit assigns an id and timestamp when missing and delivers the event.
// Inline delivery returns the store error. Async delivery never blocks: a
// full buffer drops the event and returns ErrBufferFull.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	if p.queue == nil {
		return p.persist(ctx, event)
	}

	p.closeMu.RLock()
	defer p.closeMu.RUnlock()
	if p.closed {
		return p.persist(ctx, event)
	}
	select {
	case p.queue <- event:
		p.metrics.Record(event.Category, metrics.OutcomeQueued)
		p.metrics.SetQueueDepth(len(p.queue))
		return nil
	default:
		p.metrics.Record(event.Category, metrics.OutcomeDropped)
		p.logger.WarnContext(ctx, "audit buffer full, event dropped",
			"action", event.Action,
			"transaction_id", event.TransactionID,
		)
		return ErrBufferFull
	}
}

func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.queue {
		p.metrics.SetQueueDepth(len(p.queue))
		ctx, cancel := context.WithTimeout(context.Background(), p.persistTimeout)
		err := p.persist(ctx, event)
		cancel()
		if err != nil {
			p.logger.Error("audit event lost",
				"error", err,
				"event_id", event.ID,
				"action", event.Action,
				"transaction_id", event.TransactionID,
			)
		}
	}
}

func (p *Publisher) persist(ctx context.Context, event audit.Event) error {
	start := p.now()
	err := p.store.Append(ctx, event)
	p.metrics.ObservePersist(p.now().Sub(start).Seconds())
	if err != nil {
		p.metrics.Record(event.Category, metrics.OutcomeFailed)
		return err
	}
	p.metrics.Record(event.Category, metrics.OutcomePersisted)
	return nil
}

// Close stops accepting buffered events and waits for the worker to drain
// the queue or for ctx to end. Events emitted after Close are written inline.
func (p *Publisher) Close(ctx context.Context) error {
	if p.queue == nil {
		return nil
	}
	p.closeOne.Do(func() {
		p.closeMu.Lock()
		p.closed = true
		close(p.queue)
		p.closeMu.Unlock()
	})
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
