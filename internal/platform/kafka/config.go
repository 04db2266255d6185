package kafka

import (
	"strings"
	"time"

	"github.com/akilalakshman/esignet/internal/platform/config"
	"github.com/akilalakshman/esignet/internal/platform/kafka/consumer"
	"github.com/akilalakshman/esignet/internal/platform/kafka/producer"
)

// AuditSinkGroup is the consumer group that persists audit events.
const AuditSinkGroup = "esignet-audit-sink"

// ProducerConfig returns the audit producer settings.
func ProducerConfig(cfg config.KafkaConfig) producer.Config {
	return producer.Config{
		Brokers:         strings.Join(cfg.Brokers, ","),
		Acks:            "all",
		Retries:         3,
		DeliveryTimeout: 30 * time.Second,
	}
}

// SinkConsumerConfig returns the audit sink consumer settings.
func SinkConsumerConfig(cfg config.KafkaConfig) consumer.Config {
	return consumer.Config{
		Brokers:         strings.Join(cfg.Brokers, ","),
		GroupID:         AuditSinkGroup,
		Topics:          []string{cfg.AuditTopic},
		AutoOffsetReset: "earliest",
	}
}
