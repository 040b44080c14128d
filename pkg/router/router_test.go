package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tag(v string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Trace", v)
			next.ServeHTTP(w, r)
		})
	}
}

func TestGroup_MountsWithPrefixAndMiddleware(t *testing.T) {
	r := New()
	api := r.Group("/api", tag("api"))
	sales := api.Group("sales", tag("sales"))
	sales.Get("/{id}", "sales.show", func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(chi.URLParam(req, "id")))
	})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sales/12", nil))

	assert.Equal(t, "12", rec.Body.String())
	assert.Equal(t, []string{"api", "sales"}, rec.Header().Values("X-Trace"))
}

func TestURL(t *testing.T) {
	r := New()
	r.Group("/api").Get("/sales/{id}", "sales.show", func(http.ResponseWriter, *http.Request) {})

	u, err := r.URL("sales.show", map[string]string{"id": "5"})
	require.NoError(t, err)
	assert.Equal(t, "/api/sales/5", u)

	_, err = r.URL("sales.show", nil)
	assert.Error(t, err)

	_, err = r.URL("nope", nil)
	assert.Error(t, err)
}

func TestRoutes_ListsEverything(t *testing.T) {
	r := New()
	api := r.Group("/api")
	api.Post("/sales", "sales.confirm", func(http.ResponseWriter, *http.Request) {})
	api.Get("/sales", "sales.index", func(http.ResponseWriter, *http.Request) {})
	r.Handle(http.MethodGet, "/metrics", "", http.NotFoundHandler())

	assert.Equal(t, []Route{
		{Method: "GET", Path: "/api/sales", Name: "sales.index"},
		{Method: "POST", Path: "/api/sales", Name: "sales.confirm"},
		{Method: "GET", Path: "/metrics"},
	}, r.Routes())
}
