package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithContext(context.Background(), New(&buf))
	ctx = WithRequestID(ctx, "req-42")

	Info(ctx, "Listing todos", "user_id", "u1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "Listing todos", line["msg"])
	assert.Equal(t, "req-42", line["request_id"])
	assert.Equal(t, "u1", line["user_id"])
}

func TestSetLevel(t *testing.T) {
	defer SetLevel("info")

	var buf bytes.Buffer
	ctx := WithContext(context.Background(), New(&buf))

	SetLevel("warn")
	Info(ctx, "hidden")
	assert.Zero(t, buf.Len())

	Warn(ctx, "shown")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	SetLevel("bogus")
	Debug(ctx, "hidden")
	Info(ctx, "shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestFromContext_Default(t *testing.T) {
	assert.Same(t, defaultLogger, FromContext(context.Background()))
}
