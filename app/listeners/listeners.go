// Package listeners turns committed domain events into queued broker
// publishes, keeping the request path free of broker latency.
package listeners

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/elchascon/botilleria/app/events"
	"github.com/elchascon/botilleria/app/jobs"
	"github.com/elchascon/botilleria/config"
	"github.com/elchascon/botilleria/pkg/event"
	"github.com/elchascon/botilleria/pkg/logger"
	"github.com/elchascon/botilleria/pkg/queue"
)

// Dispatcher is the part of *queue.Manager the listeners need.
type Dispatcher interface {
	Dispatch(ctx context.Context, job queue.Job) error
}

type Topics struct {
	Sales string
	Stock string
}

func TopicsFromConfig() Topics {
	return Topics{Sales: config.KafkaTopicSales(), Stock: config.KafkaTopicStock()}
}

// Register wires the event listeners on bus.
func Register(bus *event.Bus, q Dispatcher, topics Topics) {
	bus.Listen(events.SaleConfirmed, forward(q, topics.Sales, func(p interface{}) string {
		if v, ok := p.(events.SaleConfirmedPayload); ok {
			return strconv.FormatUint(uint64(v.SaleID), 10)
		}
		return ""
	}))
	bus.Listen(events.SaleVoided, forward(q, topics.Sales, func(p interface{}) string {
		if v, ok := p.(events.SaleVoidedPayload); ok {
			return strconv.FormatUint(uint64(v.SaleID), 10)
		}
		return ""
	}))
	bus.Listen(events.StockAlert, forward(q, topics.Stock, func(p interface{}) string {
		if v, ok := p.(events.StockAlertPayload); ok {
			return strconv.FormatUint(uint64(v.ProductID), 10)
		}
		return ""
	}))
}

func forward(q Dispatcher, topic string, key func(interface{}) string) event.Handler {
	return func(ctx context.Context, e event.Event) {
		log := logger.WithCtx(ctx)

		body, err := json.Marshal(e)
		if err != nil {
			log.Error("listeners: encode event", "event", e.Name, "error", err)
			return
		}

		job := &jobs.PublishEventJob{
			Topic:      topic,
			Key:        key(e.Payload),
			EventType:  e.Name,
			EventID:    e.ID,
			OccurredAt: e.OccurredAt,
			Payload:    body,
		}
		if err := q.Dispatch(ctx, job); err != nil {
			// The sale is already committed; a lost publish is logged, not surfaced.
			log.Error("listeners: queue event", "event", e.Name, "event_id", e.ID, "error", err)
		}
	}
}
