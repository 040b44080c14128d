// Package kernel assembles the HTTP handler: the global middleware stack,
// the metrics endpoint and the API routes.
package kernel

import (
	"net/http"
	"time"

	"github.com/elchascon/botilleria/app/routes"
	"github.com/elchascon/botilleria/pkg/metrics"
	"github.com/elchascon/botilleria/pkg/middleware"
	"github.com/elchascon/botilleria/pkg/reqid"
	"github.com/elchascon/botilleria/pkg/response"
	"github.com/elchascon/botilleria/pkg/router"
)

type HTTPKernel struct {
	router *router.Router
}

// NewHTTPKernel builds the router with deps wired into the API handlers.
func NewHTTPKernel(deps routes.Deps) *HTTPKernel {
	r := router.New()

	// Outermost first: metrics see total latency, recovery catches panics
	// before anything else, the request id exists before anything logs.
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.RateLimit(300, time.Minute))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Handle(http.MethodGet, "/metrics", "metrics", metrics.Handler())
	r.Get("/health", "health", func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, map[string]string{"status": "ok"})
	})

	routes.RegisterAPI(r, deps)

	return &HTTPKernel{router: r}
}

func (k *HTTPKernel) Handler() http.Handler { return k.router.Handler() }

// Router exposes the route table (route:list).
func (k *HTTPKernel) Router() *router.Router { return k.router }
