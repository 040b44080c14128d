package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/IBM/sarama/mocks"
	"github.com/elchascon/botilleria/pkg/broker"
	"github.com/elchascon/botilleria/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu   sync.Mutex
	msgs []broker.Message
	err  error
}

func (r *recorder) Publish(_ context.Context, msg broker.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *recorder) Close() error { return nil }

func usePublisher(t *testing.T, p broker.Publisher) {
	t.Helper()
	SetPublisher(p)
	t.Cleanup(func() { SetPublisher(broker.LogPublisher{}) })
}

func TestPublishEventJob_Handle(t *testing.T) {
	rec := &recorder{}
	usePublisher(t, rec)

	at := time.Date(2026, 3, 14, 22, 15, 0, 0, time.UTC)
	job := &PublishEventJob{
		Topic:      "botilleria.sales",
		Key:        "42",
		EventType:  "sale.confirmed",
		EventID:    "evt-1",
		OccurredAt: at,
		Payload:    json.RawMessage(`{"sale_id":42}`),
	}
	require.NoError(t, job.Handle(context.Background()))

	require.Len(t, rec.msgs, 1)
	msg := rec.msgs[0]
	assert.Equal(t, "botilleria.sales", msg.Topic)
	assert.Equal(t, "42", msg.Key)
	assert.Equal(t, "sale.confirmed", msg.Headers[broker.HeaderEventType])
	assert.Equal(t, "evt-1", msg.Headers[broker.HeaderEventID])
	assert.Equal(t, "2026-03-14T22:15:00Z", msg.Headers[broker.HeaderTimestamp])
	assert.JSONEq(t, `{"sale_id":42}`, string(msg.Value))
}

func TestPublishEventJob_RequiresTopic(t *testing.T) {
	usePublisher(t, &recorder{})
	assert.Error(t, (&PublishEventJob{}).Handle(context.Background()))
}

func TestPublishEventJob_ThroughQueueToKafka(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != `{"product_id":7}` {
			return errors.New("unexpected value " + string(val))
		}
		return nil
	})
	kafka := broker.NewKafkaPublisherWithProducer(producer)
	usePublisher(t, kafka)

	d := queue.NewMemoryDriver(4)
	m := queue.NewManager(d)
	Register(m)

	require.NoError(t, m.Dispatch(context.Background(), &PublishEventJob{
		Topic:     "botilleria.stock",
		Key:       "7",
		EventType: "stock.alert",
		Payload:   json.RawMessage(`{"product_id":7}`),
	}))

	raw, err := d.Pop(context.Background())
	require.NoError(t, err)
	m.Process(context.Background(), raw)

	require.NoError(t, kafka.Close())
	assert.Empty(t, m.FailedJobs())
}
