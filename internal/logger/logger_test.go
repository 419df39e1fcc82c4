package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureDefault(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Default()
	SetDefault(New(&buf, level))
	t.Cleanup(func() { SetDefault(prev) })
	return &buf
}

func TestContextFieldsAreAttached(t *testing.T) {
	buf := captureDefault(t, "info")

	ctx := WithUserID(WithRequestID(context.Background(), "req-1"), "user-9")
	InfoContext(ctx, "user updated", "target", "user-2")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "user updated", rec["msg"])
	assert.Equal(t, "req-1", rec["request_id"])
	assert.Equal(t, "user-9", rec["user_id"])
	assert.Equal(t, "user-2", rec["target"])
}

func TestLevelFiltering(t *testing.T) {
	buf := captureDefault(t, "warn")

	DebugContext(context.Background(), "dbg")
	Info("inf")
	Warn("wrn")
	Error("err")

	out := buf.String()
	assert.NotContains(t, out, `"msg":"dbg"`)
	assert.NotContains(t, out, `"msg":"inf"`)
	assert.Contains(t, out, `"msg":"wrn"`)
	assert.Contains(t, out, `"msg":"err"`)
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLevel("DEBUG").String())
	assert.Equal(t, "INFO", parseLevel("").String())
	assert.Equal(t, "ERROR", parseLevel("error").String())
}
