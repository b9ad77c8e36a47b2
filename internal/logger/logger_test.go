package logger

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &out))
	return out
}

func TestContextFieldsPropagate(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: "debug", Format: "json", Output: &buf, ServiceName: "test"})

	ctx := l.WithContext(context.Background())
	ctx = SetRunID(ctx, "run-1")
	ctx = SetCommentID(ctx, 7)

	assert.Equal(t, "run-1", GetRunID(ctx))

	CtxInfo(ctx, "hello %s", "world")
	line := decodeLine(t, &buf)
	assert.Equal(t, "hello world", line["message"])
	assert.Equal(t, "run-1", line[FieldRunID])
	assert.Equal(t, float64(7), line[FieldCommentID])
	assert.Equal(t, "test", line["service"])
}

func TestEntryMetricFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: "info", Format: "json", Output: &buf, ServiceName: "test"})
	ctx := SetStage(l.WithContext(context.Background()), "clustering")

	With(Fields{FieldCount: 3}).Since(time.Now()).WithStatus("ok").Info(ctx, "stage done")

	line := decodeLine(t, &buf)
	assert.Equal(t, "clustering", line[FieldStage])
	assert.Equal(t, float64(3), line[FieldCount])
	assert.Equal(t, "ok", line[FieldStatus])
	assert.Contains(t, line, FieldDurationMs)
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Same(t, GetDefault(), FromContext(context.Background()))
	assert.Empty(t, GetStage(context.Background()))
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("LOG_MAX_SIZE", "not-a-number")
	t.Setenv("LOG_COMPRESS", "false")

	cfg := ConfigFromEnv()
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "themeboard", cfg.ServiceName)
	assert.Empty(t, cfg.File)
	assert.Equal(t, 100, cfg.Rotation.MaxSize)
	assert.False(t, cfg.Rotation.Compress)
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l := New(&Config{Level: "info", Format: "json", ServiceName: "test", File: path, FileOnly: true})
	t.Cleanup(func() { _ = Sync() })

	l.WithField(FieldRunID, "run-2").Info("written to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := decodeLine(t, bytes.NewBuffer(data))
	assert.Equal(t, "written to file", line["message"])
	assert.Equal(t, "run-2", line[FieldRunID])
}
