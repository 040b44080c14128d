package bind

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type voidInput struct {
	Reason string `json:"motivo" validate:"required,max=255"`
}

func TestJSON(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		var in voidInput
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"motivo":"cliente se arrepintió"}`))
		errs, err := JSON(req, &in)
		require.NoError(t, err)
		assert.Nil(t, errs)
		assert.Equal(t, "cliente se arrepintió", in.Reason)
	})

	t.Run("validation errors", func(t *testing.T) {
		var in voidInput
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
		errs, err := JSON(req, &in)
		require.NoError(t, err)
		assert.Contains(t, errs, "motivo")
	})

	t.Run("malformed", func(t *testing.T) {
		var in voidInput
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"motivo":`))
		_, err := JSON(req, &in)
		assert.Error(t, err)
	})
}

func TestIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&limit=abc&neg=-1", nil)
	assert.Equal(t, 3, IntQuery(req, "page", 1))
	assert.Equal(t, 20, IntQuery(req, "limit", 20))
	assert.Equal(t, 5, IntQuery(req, "neg", 5))
	assert.Equal(t, 1, IntQuery(req, "missing", 1))
}
