// Package queue runs background jobs with retries. Jobs are JSON-encoded
// into an envelope tagged with their Go type name, pushed to a Driver and
// decoded again by workers through a registry of factories.
//
//	queue.Register(queue.TypeName(&jobs.PublishEventJob{}), func() queue.Job { return &jobs.PublishEventJob{} })
//	queue.Dispatch(&jobs.PublishEventJob{Topic: "botilleria.sales", ...})
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/elchascon/botilleria/pkg/logger"
	"github.com/elchascon/botilleria/pkg/metrics"
	"github.com/elchascon/botilleria/pkg/reqid"
)

// ErrQueueFull is returned by a bounded driver that cannot accept more jobs.
var ErrQueueFull = errors.New("queue: full")

// Job is the interface every queued job must satisfy.
type Job interface {
	// Handle executes the job. Return a non-nil error to signal failure.
	Handle(ctx context.Context) error
}

// FailedJob holds information about a job that exhausted its retries.
type FailedJob struct {
	Type     string
	Job      Job
	Err      error
	FailedAt time.Time
	Attempts int
}

// Driver is the queue storage backend.
type Driver interface {
	Push(ctx context.Context, payload []byte) error
	Pop(ctx context.Context) ([]byte, error)
}

// Delayer is implemented by drivers that can schedule a push natively.
type Delayer interface {
	PushDelayed(ctx context.Context, payload []byte, delay time.Duration) error
}

// TypeName is the registry key for job.
func TypeName(job Job) string {
	return fmt.Sprintf("%T", job)
}

// ------------------- Manager -------------------

// Manager owns a driver, a job registry and the failed-job log.
type Manager struct {
	mu       sync.RWMutex
	driver   Driver
	registry map[string]func() Job
	failed   []FailedJob
	maxRetry int
	backoff  time.Duration
	store    FailedStore
}

// NewManager builds a Manager over d with 3 attempts and 1s linear backoff.
func NewManager(d Driver) *Manager {
	return &Manager{
		driver:   d,
		registry: map[string]func() Job{},
		maxRetry: 3,
		backoff:  time.Second,
	}
}

var defaultManager = NewManager(NewMemoryDriver(1000))

// Default returns the process-wide manager used by the package functions.
func Default() *Manager { return defaultManager }

// SetDriver swaps the underlying queue driver (e.g. Redis).
func (m *Manager) SetDriver(d Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.driver = d
}

// SetMaxRetry sets how many attempts a job gets before it is recorded as failed.
func (m *Manager) SetMaxRetry(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n < 1 {
		n = 1
	}
	m.maxRetry = n
}

// SetBackoff sets the base delay; attempt k waits k×d before retrying.
func (m *Manager) SetBackoff(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.backoff = d
}

// Register makes a job type available for decoding by name.
func (m *Manager) Register(name string, factory func() Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registry[name] = factory
}

func SetDriver(d Driver)                          { defaultManager.SetDriver(d) }
func SetMaxRetry(n int)                           { defaultManager.SetMaxRetry(n) }
func Register(name string, factory func() Job)    { defaultManager.Register(name, factory) }
func Dispatch(ctx context.Context, job Job) error { return defaultManager.Dispatch(ctx, job) }
func StartWorkers(ctx context.Context, n int)     { defaultManager.StartWorkers(ctx, n) }
func FailedJobs() []FailedJob                     { return defaultManager.FailedJobs() }

// ------------------- Dispatch -------------------

type envelope struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

// Dispatch pushes job onto the queue immediately. The request id in ctx,
// if any, travels with the job so worker logs correlate with the request.
func (m *Manager) Dispatch(ctx context.Context, job Job) error {
	raw, err := encode(ctx, job)
	if err != nil {
		return err
	}
	return m.currentDriver().Push(ctx, raw)
}

// DispatchAfter pushes job after delay, natively when the driver supports it.
func (m *Manager) DispatchAfter(ctx context.Context, job Job, delay time.Duration) error {
	raw, err := encode(ctx, job)
	if err != nil {
		return err
	}

	d := m.currentDriver()
	if dl, ok := d.(Delayer); ok {
		return dl.PushDelayed(ctx, raw, delay)
	}

	time.AfterFunc(delay, func() {
		if err := d.Push(context.Background(), raw); err != nil {
			logger.Error("queue: delayed dispatch failed", "type", TypeName(job), "error", err)
		}
	})
	return nil
}

func encode(ctx context.Context, job Job) ([]byte, error) {
	typeName := TypeName(job)

	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("queue: marshal job %s: %w", typeName, err)
	}

	env, err := json.Marshal(envelope{Type: typeName, RequestID: reqid.FromCtx(ctx), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("queue: marshal envelope: %w", err)
	}
	return env, nil
}

func (m *Manager) currentDriver() Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.driver
}

// ------------------- Worker -------------------

// StartWorkers launches n workers that run until ctx is cancelled.
func (m *Manager) StartWorkers(ctx context.Context, n int) {
	for i := 0; i < n; i++ {
		go m.work(ctx)
	}
	logger.Info("queue: workers started", "count", n)
}

func (m *Manager) work(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		raw, err := m.currentDriver().Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("queue: pop failed", "error", err)
			sleep(ctx, 500*time.Millisecond)
			continue
		}
		if raw == nil {
			continue
		}

		m.process(ctx, raw)
	}
}

// Process decodes and runs one raw envelope synchronously. Workers call it
// for every popped payload; tests and the queue:work command call it directly.
func (m *Manager) Process(ctx context.Context, raw []byte) {
	m.process(ctx, raw)
}

func (m *Manager) process(ctx context.Context, raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Error("queue: bad envelope", "error", err)
		return
	}

	m.mu.RLock()
	factory, ok := m.registry[env.Type]
	m.mu.RUnlock()

	if !ok {
		logger.Warn("queue: unregistered job type", "type", env.Type)
		return
	}

	job := factory()
	if err := json.Unmarshal(env.Payload, job); err != nil {
		logger.Error("queue: unmarshal payload", "type", env.Type, "error", err)
		return
	}

	log := logger.L.With("job", env.Type)
	if env.RequestID != "" {
		log = log.With("request_id", env.RequestID)
		ctx = reqid.WithValue(ctx, env.RequestID)
	}
	ctx = logger.InjectLogger(ctx, log)

	m.runWithRetry(ctx, job, env.Type)
}

func (m *Manager) runWithRetry(ctx context.Context, job Job, typeName string) {
	m.mu.RLock()
	maxRetry, backoff := m.maxRetry, m.backoff
	m.mu.RUnlock()

	log := logger.WithCtx(ctx)
	start := time.Now()

	var lastErr error
	for attempt := 1; attempt <= maxRetry; attempt++ {
		if err := job.Handle(ctx); err != nil {
			lastErr = err
			log.Warn("queue: job failed", "attempt", attempt, "error", err)
			if attempt < maxRetry {
				sleep(ctx, time.Duration(attempt)*backoff)
			}
			continue
		}
		metrics.RecordQueueJob(typeName, "success", start)
		log.Debug("queue: job processed", "attempt", attempt)
		return
	}

	metrics.RecordQueueJob(typeName, "failed", start)
	m.persistFailed(ctx, job, typeName, lastErr, maxRetry)
	log.Error("queue: job exhausted retries", "error", lastErr)
}

// Drain runs whatever an in-memory driver still holds on the calling
// goroutine and returns how many payloads it processed. Drivers that cannot
// report their length (Redis) keep their jobs for `queue:work`.
func (m *Manager) Drain(ctx context.Context) int {
	d, ok := m.currentDriver().(interface{ Len() int })
	if !ok {
		return 0
	}
	n := 0
	for d.Len() > 0 && ctx.Err() == nil {
		raw, err := m.currentDriver().Pop(ctx)
		if err != nil || raw == nil {
			break
		}
		m.process(ctx, raw)
		n++
	}
	return n
}

// FailedJobs returns a snapshot of jobs that failed in this process.
func (m *Manager) FailedJobs() []FailedJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]FailedJob, len(m.failed))
	copy(out, m.failed)
	return out
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
