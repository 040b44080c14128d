package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithCtx_ReturnsInjectedLogger(t *testing.T) {
	var buf bytes.Buffer
	reqLog := New(&buf, "production").With("request_id", "abc")

	ctx := InjectLogger(context.Background(), reqLog)
	WithCtx(ctx).Info("sale confirmed", "sale_id", 7)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "abc", line["request_id"])
	assert.Equal(t, float64(7), line["sale_id"])
}

func TestWithCtx_FallsBackToBase(t *testing.T) {
	assert.Same(t, L, WithCtx(context.Background()))
}

func TestNew_TestingEnvDropsInfo(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "testing").Info("quiet")
	assert.Empty(t, buf.String())
}
