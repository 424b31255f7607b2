package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AlibekovAA/cloudrun-demo/internal/common/constants"
)

func TestLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "dashboard", "warn")

	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARNING] [dashboard]")
	assert.Contains(t, out, "shown")
}

func TestLogger_WithFieldsSortedAndTraceID(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "dashboard", "debug")

	ctx := context.WithValue(context.Background(), constants.TraceIDKey, "abc123")
	log.WithFields(ctx, Fields{"b": 2, "a": 1}).Info("created")

	out := buf.String()
	assert.Contains(t, out, "[trace_id=abc123 a=1 b=2]")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "created"))
}

func TestLogger_ShouldLog(t *testing.T) {
	log := NewWithWriter(&bytes.Buffer{}, "", "error")

	assert.False(t, log.ShouldLog(DEBUG))
	assert.False(t, log.ShouldLog(WARNING))
	assert.True(t, log.ShouldLog(ERROR))
	assert.True(t, log.ShouldLog(CRITICAL))
}

func TestParseLevel_DefaultsToInfo(t *testing.T) {
	assert.Equal(t, INFO, parseLevel(""))
	assert.Equal(t, INFO, parseLevel("verbose"))
	assert.Equal(t, WARNING, parseLevel(" warning "))
	assert.Equal(t, DEBUG, parseLevel("debug"))
}

func TestNew_WithLogDirCreatesFile(t *testing.T) {
	dir := t.TempDir()

	log, err := New(dir, "dashboard", "info")
	assert.NoError(t, err)
	log.Info("to file")
	assert.NoError(t, log.Close())

	assert.FileExists(t, dir+"/app.log")
}
