// Package event is an in-process publish/subscribe dispatcher. Services fire
// domain events after their transaction commits; listeners registered at
// boot react to them (e.g. by queueing a broker publish).
package event

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is one occurrence of a named domain fact.
type Event struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(name string, payload interface{}) Event {
	return Event{ID: uuid.NewString(), Name: name, OccurredAt: time.Now().UTC(), Payload: payload}
}

// Handler receives a fired event.
type Handler func(ctx context.Context, e Event)

// Bus holds listeners per event name. The zero value is not usable; use NewBus.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: map[string][]Handler{}}
}

// Listen registers a handler for the given event name.
func (b *Bus) Listen(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

// Fire dispatches e synchronously to all listeners of e.Name.
func (b *Bus) Fire(ctx context.Context, e Event) {
	for _, h := range b.snapshot(e.Name) {
		h(ctx, e)
	}
}

// FireAsync dispatches e to every listener on its own goroutine and returns
// immediately. ctx cancellation is detached.
func (b *Bus) FireAsync(ctx context.Context, e Event) {
	ctx = context.WithoutCancel(ctx)
	for _, h := range b.snapshot(e.Name) {
		go h(ctx, e)
	}
}

// Flush removes all listeners.
func (b *Bus) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = map[string][]Handler{}
}

func (b *Bus) snapshot(name string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	hs := make([]Handler, len(b.handlers[name]))
	copy(hs, b.handlers[name])
	return hs
}

var defaultBus = NewBus()

// Default returns the process-wide bus.
func Default() *Bus { return defaultBus }

func Listen(name string, h Handler)          { defaultBus.Listen(name, h) }
func Fire(ctx context.Context, e Event)      { defaultBus.Fire(ctx, e) }
func FireAsync(ctx context.Context, e Event) { defaultBus.FireAsync(ctx, e) }
func Flush()                                 { defaultBus.Flush() }
