package idempotency

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handlerWithStatus(calls *atomic.Int32, status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"venta_id":%d}`, n)
	})
}

func post(h http.Handler, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/sales", nil)
	if key != "" {
		req.Header.Set(Header, key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_ReplaysSuccess(t *testing.T) {
	var calls atomic.Int32
	h := Middleware(NewMemoryStore(), time.Hour)(handlerWithStatus(&calls, http.StatusOK))

	first := post(h, "abc")
	second := post(h, "abc")

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, "application/json", second.Header().Get("Content-Type"))
}

func TestMiddleware_FailureReleasesKey(t *testing.T) {
	var calls atomic.Int32
	h := Middleware(NewMemoryStore(), time.Hour)(handlerWithStatus(&calls, http.StatusBadRequest))

	post(h, "abc")
	post(h, "abc")

	assert.Equal(t, int32(2), calls.Load())
}

func TestMiddleware_NoHeaderPassesThrough(t *testing.T) {
	var calls atomic.Int32
	h := Middleware(NewMemoryStore(), time.Hour)(handlerWithStatus(&calls, http.StatusOK))

	post(h, "")
	post(h, "")

	assert.Equal(t, int32(2), calls.Load())
}

func TestMiddleware_InProgressConflicts(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Begin(context.Background(), "abc", time.Hour)
	require.NoError(t, err)

	var calls atomic.Int32
	h := Middleware(store, time.Hour)(handlerWithStatus(&calls, http.StatusOK))

	rec := post(h, "abc")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Zero(t, calls.Load())
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, store.Complete(ctx, "k", Record{Status: 200}, time.Minute))

	rec, err := store.Begin(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, rec)

	now = now.Add(2 * time.Minute)
	rec, err = store.Begin(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestMiddleware_PanicReleasesKey(t *testing.T) {
	var calls atomic.Int32
	h := Middleware(NewMemoryStore(), time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			panic("driver exploded")
		}
		w.WriteHeader(http.StatusOK)
	}))

	assert.Panics(t, func() { post(h, "abc") })

	rec := post(h, "abc")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(2), calls.Load())
}
