// Package jobs holds the background jobs run by the queue workers.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/elchascon/botilleria/pkg/broker"
	"github.com/elchascon/botilleria/pkg/queue"
)

var (
	pubMu     sync.RWMutex
	publisher broker.Publisher = broker.LogPublisher{}
)

// SetPublisher sets where PublishEventJob delivers. The server installs the
// Kafka publisher at boot; the default logs.
func SetPublisher(p broker.Publisher) {
	pubMu.Lock()
	defer pubMu.Unlock()
	publisher = p
}

func currentPublisher() broker.Publisher {
	pubMu.RLock()
	defer pubMu.RUnlock()
	return publisher
}

// PublishEventJob forwards one domain event to the broker. A failed
// publish is retried by the queue and lands in failed_jobs when it keeps failing.
type PublishEventJob struct {
	Topic      string          `json:"topic"`
	Key        string          `json:"key"`
	EventType  string          `json:"event_type"`
	EventID    string          `json:"event_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

func (j *PublishEventJob) Handle(ctx context.Context) error {
	if j.Topic == "" {
		return errors.New("publish event: no topic")
	}

	return currentPublisher().Publish(ctx, broker.Message{
		Topic: j.Topic,
		Key:   j.Key,
		Headers: map[string]string{
			broker.HeaderEventType: j.EventType,
			broker.HeaderEventID:   j.EventID,
			broker.HeaderTimestamp: j.OccurredAt.UTC().Format(time.RFC3339Nano),
		},
		Value: j.Payload,
	})
}

// Register adds every job type to m's registry.
func Register(m *queue.Manager) {
	m.Register(queue.TypeName(&PublishEventJob{}), func() queue.Job { return &PublishEventJob{} })
}
