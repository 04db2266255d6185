package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/akilalakshman/esignet/internal/platform/config"
	"github.com/akilalakshman/esignet/internal/platform/database"
	"github.com/akilalakshman/esignet/internal/platform/kafka"
	"github.com/akilalakshman/esignet/internal/platform/kafka/consumer"
	"github.com/akilalakshman/esignet/internal/platform/kafka/producer"
	audit "github.com/akilalakshman/esignet/pkg/platform/audit"
	auditconsumer "github.com/akilalakshman/esignet/pkg/platform/audit/consumer"
	auditmetrics "github.com/akilalakshman/esignet/pkg/platform/audit/metrics"
	auditpublisher "github.com/akilalakshman/esignet/pkg/platform/audit/publisher"
	auditkafka "github.com/akilalakshman/esignet/pkg/platform/audit/store/kafka"
	auditmemory "github.com/akilalakshman/esignet/pkg/platform/audit/store/memory"
	auditpostgres "github.com/akilalakshman/esignet/pkg/platform/audit/store/postgres"
)

const (
	auditTopicPartitions  = 3
	auditTopicReplication = 1
)

// auditPipeline owns every resource behind the audit publisher.
type auditPipeline struct {
	publisher *auditpublisher.Publisher
	producer  *producer.Producer
	sink      *consumer.Consumer
	admin     *kafka.Admin
}

func buildAudit(ctx context.Context, cfg config.Config, log *slog.Logger, reg prometheus.Registerer, db *database.Pool) (*auditPipeline, error) {
	p := &auditPipeline{}

	if len(cfg.Kafka.Brokers) > 0 {
		admin, err := kafka.NewAdmin(cfg.Kafka.Brokers)
		if err != nil {
			return nil, err
		}
		p.admin = admin
	}

	var store audit.Store
	switch cfg.Audit.Mode {
	case config.AuditPostgres:
		store = auditpostgres.New(db.DB())
	case config.AuditKafka:
		if err := p.admin.EnsureTopic(ctx, cfg.Kafka.AuditTopic, auditTopicPartitions, auditTopicReplication); err != nil {
			p.close(ctx, log)
			return nil, err
		}
		prod, err := producer.New(kafka.ProducerConfig(cfg.Kafka), log)
		if err != nil {
			p.close(ctx, log)
			return nil, err
		}
		p.producer = prod
		store = auditkafka.New(prod, cfg.Kafka.AuditTopic)
		// Without a sink nothing drains the topic into the database, so write
		// there directly as well.
		if db != nil && !cfg.Kafka.SinkEnabled {
			store = audit.Fanout{store, auditpostgres.New(db.DB())}
		}
	default:
		store = auditmemory.NewInMemoryStore()
	}

	if cfg.Kafka.SinkEnabled {
		handler := auditconsumer.NewHandler(auditpostgres.New(db.DB()), log)
		sink, err := consumer.New(kafka.SinkConsumerConfig(cfg.Kafka), handler, log)
		if err != nil {
			p.close(ctx, log)
			return nil, fmt.Errorf("create audit sink: %w", err)
		}
		p.sink = sink
	}

	p.publisher = auditpublisher.NewPublisher(store,
		auditpublisher.WithAsyncBuffer(cfg.Audit.AsyncBuffer),
		auditpublisher.WithPublisherLogger(log),
		auditpublisher.WithMetrics(auditmetrics.NewWithRegisterer(reg)),
	)
	return p, nil
}

// start launches the sink consumer, if any.
func (p *auditPipeline) start(ctx context.Context) {
	if p.sink != nil {
		p.sink.Start(ctx)
	}
}

// close drains the publisher before closing the producer it writes to. ctx
// bounds the drain.
func (p *auditPipeline) close(ctx context.Context, log *slog.Logger) {
	var errs []error
	if p.publisher != nil {
		errs = append(errs, p.publisher.Close(ctx))
	}
	if p.sink != nil {
		errs = append(errs, p.sink.Stop(ctx))
	}
	if p.producer != nil {
		errs = append(errs, p.producer.Close())
	}
	if p.admin != nil {
		p.admin.Close()
	}
	if err := errors.Join(errs...); err != nil {
		log.Error("audit pipeline shutdown", "error", err)
	}
}
