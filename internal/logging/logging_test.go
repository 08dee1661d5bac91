package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "order-service", "info")

	ctx := WithRequestID(context.Background(), "rid-1")
	log.InfoContext(ctx, "order created", "order_id", "o-1")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "rid-1", rec["request_id"])
	assert.Equal(t, "order-service", rec["service"])
	assert.Equal(t, "o-1", rec["order_id"])
	assert.NotContains(t, rec, "trace_id")
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "svc", "warn")

	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.NotZero(t, buf.Len())
}
