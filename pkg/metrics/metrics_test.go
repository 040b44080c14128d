package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/api/sales/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(RequestTotal.WithLabelValues("GET", "/api/sales/{id}", "404"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/sales/41", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/sales/42", nil))

	after := testutil.ToFloat64(RequestTotal.WithLabelValues("GET", "/api/sales/{id}", "404"))
	assert.Equal(t, before+2, after)
}

func TestHandler_ExposesDomainMetrics(t *testing.T) {
	SalesConfirmed.WithLabelValues("EFECTIVO").Inc()
	RecordSaleRejected("insufficient_stock")

	rec := httptest.NewRecorder()
	Handler()(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "botilleria_sales_confirmed_total"))
	assert.True(t, strings.Contains(body, `botilleria_sales_rejected_total{kind="insufficient_stock"}`))
}
