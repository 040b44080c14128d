package listeners

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/elchascon/botilleria/app/events"
	"github.com/elchascon/botilleria/app/jobs"
	"github.com/elchascon/botilleria/pkg/event"
	"github.com/elchascon/botilleria/pkg/queue"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	jobs []*jobs.PublishEventJob
	err  error
}

func (c *captured) Dispatch(_ context.Context, job queue.Job) error {
	if c.err != nil {
		return c.err
	}
	c.jobs = append(c.jobs, job.(*jobs.PublishEventJob))
	return nil
}

var topics = Topics{Sales: "t.sales", Stock: "t.stock"}

func TestRegister_RoutesEventsToTopics(t *testing.T) {
	bus := event.NewBus()
	q := &captured{}
	Register(bus, q, topics)

	ctx := context.Background()
	bus.Fire(ctx, event.New(events.SaleConfirmed, events.SaleConfirmedPayload{SaleID: 12, Total: decimal.NewFromInt(3000)}))
	bus.Fire(ctx, event.New(events.StockAlert, events.StockAlertPayload{AlertID: 1, ProductID: 5, Stock: 1, MinStock: 2}))
	bus.Fire(ctx, event.New(events.SaleVoided, events.SaleVoidedPayload{SaleID: 12, Reason: "error"}))

	require.Len(t, q.jobs, 3)

	assert.Equal(t, "t.sales", q.jobs[0].Topic)
	assert.Equal(t, "12", q.jobs[0].Key)
	assert.Equal(t, events.SaleConfirmed, q.jobs[0].EventType)
	assert.NotEmpty(t, q.jobs[0].EventID)

	assert.Equal(t, "t.stock", q.jobs[1].Topic)
	assert.Equal(t, "5", q.jobs[1].Key)

	assert.Equal(t, "t.sales", q.jobs[2].Topic)
	assert.Equal(t, events.SaleVoided, q.jobs[2].EventType)

	var body struct {
		Name    string         `json:"name"`
		Payload map[string]any `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(q.jobs[0].Payload, &body))
	assert.Equal(t, events.SaleConfirmed, body.Name)
	assert.Equal(t, float64(12), body.Payload["sale_id"])
}

func TestRegister_DispatchErrorIsSwallowed(t *testing.T) {
	bus := event.NewBus()
	Register(bus, &captured{err: errors.New("queue: full")}, topics)

	assert.NotPanics(t, func() {
		bus.Fire(context.Background(), event.New(events.SaleConfirmed, events.SaleConfirmedPayload{SaleID: 1}))
	})
}
