package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/cloudrun-demo/internal/common/logger"
)

func TestDefaultConfig_WriteTimeoutCoversRequestTimeout(t *testing.T) {
	cfg := DefaultConfig("8080", time.Minute)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, time.Minute+5*time.Second, cfg.WriteTimeout)
}

func TestRun_ContextCancelRunsHooks(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "test", "info")

	cfg := DefaultConfig("0", time.Second)
	cfg.Addr = "127.0.0.1:0"
	srv := New(cfg, http.NotFoundHandler())

	ctx, cancel := context.WithCancel(context.Background())
	hookCalls := 0
	hooks := []ShutdownHook{
		func(context.Context) error { hookCalls++; return nil },
		func(context.Context) error { hookCalls++; return errors.New("flush failed") },
	}

	done := make(chan error, 1)
	go func() { done <- Run(ctx, srv, cfg, log, "test", hooks...) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Equal(t, 2, hookCalls)
	assert.Contains(t, buf.String(), "shutdown hook 1 failed")
}
