// Package broker publishes domain events to an external message broker.
// Kafka is used when KAFKA_BROKERS is configured; otherwise events are
// written to the log so nothing downstream is required to run the store.
package broker

import (
	"context"
	"fmt"

	"github.com/elchascon/botilleria/config"
	"github.com/elchascon/botilleria/pkg/logger"
)

// Message is one record to publish.
type Message struct {
	Topic   string
	Key     string
	Headers map[string]string
	Value   []byte
}

// Publisher delivers messages. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// FromConfig returns a KafkaPublisher when brokers are configured, else a LogPublisher.
func FromConfig() (Publisher, error) {
	brokers := config.KafkaBrokers()
	if len(brokers) == 0 {
		return LogPublisher{}, nil
	}
	p, err := NewKafkaPublisher(brokers, config.KafkaClientID())
	if err != nil {
		return nil, fmt.Errorf("broker: %w", err)
	}
	return p, nil
}

// LogPublisher writes messages to the request-scoped logger.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, msg Message) error {
	logger.WithCtx(ctx).Info("broker: event",
		"topic", msg.Topic,
		"key", msg.Key,
		"event_type", msg.Headers[HeaderEventType],
		"value", string(msg.Value),
	)
	return nil
}

func (LogPublisher) Close() error { return nil }

const (
	HeaderEventType = "event-type"
	HeaderEventID   = "event-id"
	HeaderTimestamp = "timestamp"
)
