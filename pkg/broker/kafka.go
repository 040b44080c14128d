package broker

import (
	"context"
	"fmt"
	"sort"

	"github.com/IBM/sarama"
	"github.com/elchascon/botilleria/pkg/logger"
)

// KafkaPublisher sends each message synchronously with acks from all
// in-sync replicas. Retries beyond sarama's own belong to the caller (the
// queue job that wraps the publish).
type KafkaPublisher struct {
	producer sarama.SyncProducer
}

// NewKafkaPublisher dials brokers with an idempotent sync producer.
func NewKafkaPublisher(brokers []string, clientID string) (*KafkaPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.ClientID = clientID
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return NewKafkaPublisherWithProducer(producer), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer (e.g. sarama/mocks).
func NewKafkaPublisherWithProducer(p sarama.SyncProducer) *KafkaPublisher {
	return &KafkaPublisher{producer: p}
}

func (p *KafkaPublisher) Publish(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	pm := &sarama.ProducerMessage{
		Topic:   msg.Topic,
		Value:   sarama.ByteEncoder(msg.Value),
		Headers: recordHeaders(msg.Headers),
	}
	// Keyed by product or sale id so events for one entity stay ordered.
	if msg.Key != "" {
		pm.Key = sarama.StringEncoder(msg.Key)
	}

	partition, offset, err := p.producer.SendMessage(pm)
	if err != nil {
		return fmt.Errorf("kafka: send to %s: %w", msg.Topic, err)
	}

	logger.WithCtx(ctx).Debug("broker: published",
		"topic", msg.Topic,
		"partition", partition,
		"offset", offset,
		"event_type", msg.Headers[HeaderEventType],
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func recordHeaders(h map[string]string) []sarama.RecordHeader {
	if len(h) == 0 {
		return nil
	}
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]sarama.RecordHeader, 0, len(keys))
	for _, k := range keys {
		out = append(out, sarama.RecordHeader{Key: []byte(k), Value: []byte(h[k])})
	}
	return out
}
