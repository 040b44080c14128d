package kernel

import (
	"net/http"
	"testing"

	"github.com/elchascon/botilleria/app/routes"
	"github.com/elchascon/botilleria/pkg/reqid"
	"github.com/elchascon/botilleria/pkg/testkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKernel_HealthCarriesRequestID(t *testing.T) {
	h := NewHTTPKernel(routes.Deps{}).Handler()

	rec := testkit.Do(t, h, testkit.Request{Method: http.MethodGet, Path: "/health"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(reqid.Header))

	rec = testkit.Do(t, h, testkit.Request{Method: http.MethodGet, Path: "/health",
		Headers: map[string]string{reqid.Header: "abc-123"}})
	assert.Equal(t, "abc-123", rec.Header().Get(reqid.Header))
}

func TestKernel_MetricsAndNotFound(t *testing.T) {
	h := NewHTTPKernel(routes.Deps{}).Handler()

	rec := testkit.Do(t, h, testkit.Request{Method: http.MethodGet, Path: "/health"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = testkit.Do(t, h, testkit.Request{Method: http.MethodGet, Path: "/metrics"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "botilleria_http_requests_total")

	rec = testkit.Do(t, h, testkit.Request{Method: http.MethodGet, Path: "/nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, float64(404), testkit.DecodeJSON(t, rec)["status"])
}

func TestKernel_RouteTable(t *testing.T) {
	k := NewHTTPKernel(routes.Deps{})
	path, ok := k.Router().Path("sales.confirm")
	require.True(t, ok)
	assert.Equal(t, "/api/sales", path)
}
