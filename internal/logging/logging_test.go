package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStructuredLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(&buf, slog.LevelInfo, "json")

	logger.Info("topology loaded", "stations", 42)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "topology loaded", entry["msg"])
	assert.Equal(t, float64(42), entry["stations"])
}

func TestNewStructuredLoggerText(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(&buf, slog.LevelWarn, "text")

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(&buf, slog.LevelInfo, "json")

	LogError(logger, "save failed", errors.New("disk full"), slog.String("path", "save_data.json"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "disk full", entry["error"])
	assert.Equal(t, "save_data.json", entry["path"])

	// nil logger is a no-op
	LogError(nil, "ignored", errors.New("x"))
}

func TestLogOperationSkipsZeroDuration(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(&buf, slog.LevelInfo, "json")

	LogOperation(logger, "refresh", slog.Duration("duration", 0), slog.Int("routes", 3))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotContains(t, entry, "duration")
	assert.Equal(t, float64(3), entry["routes"])

	buf.Reset()
	LogOperation(logger, "refresh", slog.Duration("duration", time.Second))
	assert.Contains(t, buf.String(), "duration")
}

type failingCloser struct{}

func (failingCloser) Close() error { return errors.New("already closed") }

func TestSafeClose(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(&buf, slog.LevelInfo, "json")

	SafeClose(failingCloser{}, logger, "visited_repository")
	assert.Contains(t, buf.String(), "already closed")
	assert.Contains(t, buf.String(), "visited_repository")

	SafeClose(nil, logger, "noop")
}

func TestContextLogger(t *testing.T) {
	logger := Discard()
	ctx := WithLogger(context.Background(), logger)

	assert.Same(t, logger, FromContext(ctx))
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}
