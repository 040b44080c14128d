package queue_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/elchascon/botilleria/pkg/queue"
	"github.com/elchascon/botilleria/pkg/reqid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	echoCalls atomic.Int32
	failCalls atomic.Int32
	seenReqID atomic.Value
)

type echoJob struct {
	Val string `json:"val"`
}

func (j *echoJob) Handle(ctx context.Context) error {
	echoCalls.Add(1)
	seenReqID.Store(reqid.FromCtx(ctx))
	return nil
}

type failJob struct{}

func (j *failJob) Handle(context.Context) error {
	failCalls.Add(1)
	return errors.New("always fails")
}

type memStore struct {
	mu   sync.Mutex
	recs []queue.FailedJobRecord
}

func (s *memStore) Save(_ context.Context, rec *queue.FailedJobRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, *rec)
	return nil
}

func newManager(t *testing.T) (*queue.Manager, *queue.MemoryDriver) {
	t.Helper()
	d := queue.NewMemoryDriver(10)
	m := queue.NewManager(d)
	m.SetBackoff(0)
	m.Register(queue.TypeName(&echoJob{}), func() queue.Job { return &echoJob{} })
	m.Register(queue.TypeName(&failJob{}), func() queue.Job { return &failJob{} })
	return m, d
}

func TestDispatchAndProcess(t *testing.T) {
	m, _ := newManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.StartWorkers(ctx, 2)

	before := echoCalls.Load()
	require.NoError(t, m.Dispatch(reqid.WithValue(context.Background(), "req-1"), &echoJob{Val: "hola"}))

	assert.Eventually(t, func() bool { return echoCalls.Load() == before+1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "req-1", seenReqID.Load())
}

func TestFailedJobIsRetriedThenPersisted(t *testing.T) {
	m, d := newManager(t)
	m.SetMaxRetry(2)
	store := &memStore{}
	m.UseStore(store)

	require.NoError(t, m.Dispatch(context.Background(), &failJob{}))
	raw, err := d.Pop(context.Background())
	require.NoError(t, err)

	before := failCalls.Load()
	m.Process(context.Background(), raw)

	assert.Equal(t, before+2, failCalls.Load())
	require.Len(t, m.FailedJobs(), 1)
	require.Len(t, store.recs, 1)
	assert.Equal(t, "*queue_test.failJob", store.recs[0].JobType)
	assert.Equal(t, 2, store.recs[0].Attempts)
	assert.Equal(t, "always fails", store.recs[0].Error)
}

func TestMemoryDriverFull(t *testing.T) {
	d := queue.NewMemoryDriver(1)
	require.NoError(t, d.Push(context.Background(), []byte("a")))
	assert.ErrorIs(t, d.Push(context.Background(), []byte("b")), queue.ErrQueueFull)
	assert.Equal(t, 1, d.Len())
}

func TestDispatchAfter_MemoryDriver(t *testing.T) {
	m, d := newManager(t)
	require.NoError(t, m.DispatchAfter(context.Background(), &echoJob{Val: "later"}, 20*time.Millisecond))
	assert.Equal(t, 0, d.Len())
	assert.Eventually(t, func() bool { return d.Len() == 1 }, time.Second, 5*time.Millisecond)
}

func TestUnregisteredJobIsDropped(t *testing.T) {
	m := queue.NewManager(queue.NewMemoryDriver(1))
	m.Process(context.Background(), []byte(`{"type":"*nope.Job","payload":{}}`))
	m.Process(context.Background(), []byte(`not json`))
	assert.Empty(t, m.FailedJobs())
}

func TestDrainRunsQueuedJobsInline(t *testing.T) {
	m, d := newManager(t)
	ctx := context.Background()

	before := echoCalls.Load()
	require.NoError(t, m.Dispatch(ctx, &echoJob{Val: "a"}))
	require.NoError(t, m.Dispatch(ctx, &echoJob{Val: "b"}))
	require.Equal(t, 2, d.Len())

	assert.Equal(t, 2, m.Drain(ctx))
	assert.Equal(t, before+2, echoCalls.Load())
	assert.Zero(t, d.Len())
	assert.Zero(t, m.Drain(ctx))
}
