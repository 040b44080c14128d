// Package idempotency replays the first successful response for a repeated
// Idempotency-Key so a retried checkout cannot record the same sale twice.
package idempotency

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/elchascon/botilleria/pkg/logger"
	"github.com/elchascon/botilleria/pkg/response"
)

const Header = "Idempotency-Key"

// ErrInProgress means another request holding the same key has not finished.
var ErrInProgress = errors.New("idempotency: request in progress")

// Record is a stored response.
type Record struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Store reserves keys and keeps completed responses.
type Store interface {
	// Begin reserves key. If key already completed, the stored record is
	// returned; if it is reserved but unfinished, ErrInProgress.
	Begin(ctx context.Context, key string, ttl time.Duration) (*Record, error)
	// Complete stores rec under a reserved key.
	Complete(ctx context.Context, key string, rec Record, ttl time.Duration) error
	// Release drops a reservation so the client may retry.
	Release(ctx context.Context, key string) error
}

// Key returns the trimmed Idempotency-Key header of r.
func Key(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(Header))
}

// Middleware guards a handler with store. Requests without the header pass
// through. Only 2xx responses are kept; anything else releases the key.
func Middleware(store Store, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := Key(r)
			if key == "" || len(key) > 255 {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			log := logger.WithCtx(ctx)

			rec, err := store.Begin(ctx, key, ttl)
			switch {
			case errors.Is(err, ErrInProgress):
				response.Conflict(w, "A request with this Idempotency-Key is already being processed.")
				return
			case err != nil:
				log.Warn("idempotency: store unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			case rec != nil:
				log.Info("idempotency: replaying stored response", "key", key)
				w.Header().Set("Content-Type", rec.ContentType)
				w.Header().Set("Idempotent-Replayed", "true")
				w.WriteHeader(rec.Status)
				_, _ = w.Write(rec.Body)
				return
			}

			bg := context.WithoutCancel(ctx)
			kept := false
			// Runs on panic too; otherwise the key stays reserved until the TTL.
			defer func() {
				if kept {
					return
				}
				if err := store.Release(bg, key); err != nil {
					log.Warn("idempotency: release failed", "error", err)
				}
			}()

			cw := &capture{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(cw, r)

			// The response is already written; store errors only cost replay.
			if cw.status >= 200 && cw.status < 300 {
				kept = true
				if err := store.Complete(bg, key, Record{
					Status:      cw.status,
					ContentType: w.Header().Get("Content-Type"),
					Body:        cw.body.Bytes(),
				}, ttl); err != nil {
					log.Warn("idempotency: store write failed", "error", err)
				}
			}
		})
	}
}

type capture struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *capture) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *capture) Write(b []byte) (int, error) {
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}
