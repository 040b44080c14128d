// Package server boots the process: database, Redis, queue workers, the
// broker publisher and the HTTP listener, and tears them down on SIGINT/SIGTERM.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/elchascon/botilleria/app/jobs"
	"github.com/elchascon/botilleria/app/listeners"
	"github.com/elchascon/botilleria/app/routes"
	"github.com/elchascon/botilleria/config"
	"github.com/elchascon/botilleria/internal/kernel"
	"github.com/elchascon/botilleria/pkg/broker"
	"github.com/elchascon/botilleria/pkg/cache"
	"github.com/elchascon/botilleria/pkg/database"
	"github.com/elchascon/botilleria/pkg/event"
	"github.com/elchascon/botilleria/pkg/idempotency"
	"github.com/elchascon/botilleria/pkg/logger"
	"github.com/elchascon/botilleria/pkg/queue"
)

const shutdownTimeout = 15 * time.Second

// Runtime holds what Boot started so commands can share and release it.
type Runtime struct {
	Publisher   broker.Publisher
	Idempotency idempotency.Store
}

// Boot connects the database and Redis, installs the broker publisher and
// wires domain events to the queue. Redis is optional: without it the queue
// and idempotency keys live in process memory.
func Boot(ctx context.Context) (*Runtime, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := database.Connect(); err != nil {
		return nil, err
	}

	rt := &Runtime{Idempotency: idempotency.NewMemoryStore()}

	if err := cache.Connect(ctx); err != nil {
		logger.Warn("redis unavailable, using in-process queue and idempotency store", "error", err)
	} else {
		rt.Idempotency = idempotency.NewRedisStore(cache.RDB)
		if config.QueueDriver() == "redis" {
			queue.SetDriver(queue.NewRedisDriver(ctx, cache.RDB))
		}
	}

	pub, err := broker.FromConfig()
	if err != nil {
		logger.Warn("kafka unavailable, events go to the log", "error", err)
		pub = broker.LogPublisher{}
	}
	rt.Publisher = pub
	jobs.SetPublisher(pub)

	queue.UseDB(database.DB)
	jobs.Register(queue.Default())
	listeners.Register(event.Default(), queue.Default(), listeners.TopicsFromConfig())

	return rt, nil
}

// Close releases the broker, Redis and the database.
func (rt *Runtime) Close() {
	if rt.Publisher != nil {
		if err := rt.Publisher.Close(); err != nil {
			logger.Warn("broker close", "error", err)
		}
	}
	if err := cache.Close(); err != nil {
		logger.Warn("redis close", "error", err)
	}
	if err := database.Close(); err != nil {
		logger.Warn("database close", "error", err)
	}
}

// Start serves HTTP on APP_PORT with queue workers in the same process,
// until a termination signal arrives.
func Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := Boot(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	queue.StartWorkers(ctx, config.QueueWorkers())

	k := kernel.NewHTTPKernel(routes.Deps{
		DB:             database.DB,
		Bus:            event.Default(),
		Idempotency:    rt.Idempotency,
		IdempotencyTTL: config.IdempotencyTTL(),
	})

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           k.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("botilleria listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
