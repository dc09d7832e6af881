package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperengineering/searchbridge/internal/config"
)

// logCapture captures slog output for testing
type logCapture struct {
	mu      sync.Mutex
	entries []map[string]any
}

func (c *logCapture) handler() slog.Handler {
	return slog.NewJSONHandler(c, &slog.HandlerOptions{Level: slog.LevelDebug})
}

func (c *logCapture) Write(p []byte) (n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var entry map[string]any
	if err := json.Unmarshal(p, &entry); err == nil {
		c.entries = append(c.entries, entry)
	}
	return len(p), nil
}

func (c *logCapture) messageIndex(msg string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, e := range c.entries {
		if e["msg"] == msg {
			return i
		}
	}
	return -1
}

func serveConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	isolateEnv(t, "http://127.0.0.1:1")
	t.Setenv("SEARCHBRIDGE_CATALOG_PATH", filepath.Join(dir, "catalog.db"))
	t.Setenv("SEARCHBRIDGE_SNAPSHOT_PATH", filepath.Join(dir, "snapshots", "catalog.db"))
	t.Setenv("SEARCHBRIDGE_API_KEY", "lifecycle-key")
	t.Setenv("SEARCHBRIDGE_SHUTDOWN_TIMEOUT", "2s")
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestServe_StartsAndShutsDownGracefully(t *testing.T) {
	capture := &logCapture{}
	oldDefault := slog.Default()
	slog.SetDefault(slog.New(capture.handler()))
	defer slog.SetDefault(oldDefault)

	cfg := serveConfig(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := "http://" + ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/api/v1/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	// The snapshot worker writes one snapshot as soon as it starts.
	require.Eventually(t, func() bool {
		_, err := os.Stat(cfg.Snapshot.Path)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	req, _ := http.NewRequest(http.MethodGet, base+"/api/v1/indexes", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancellation")
	}

	_, err = http.Get(base + "/api/v1/health")
	assert.Error(t, err, "listener must be closed after shutdown")

	catalogIdx := capture.messageIndex("catalog initialized")
	startIdx := capture.messageIndex("server starting")
	initiatedIdx := capture.messageIndex("shutdown initiated")
	completeIdx := capture.messageIndex("shutdown complete")
	require.NotEqual(t, -1, catalogIdx)
	require.NotEqual(t, -1, startIdx)
	require.NotEqual(t, -1, initiatedIdx)
	require.NotEqual(t, -1, completeIdx)
	assert.Less(t, catalogIdx, startIdx)
	assert.Less(t, initiatedIdx, completeIdx)
}

func TestServe_OpenFailureClosesListener(t *testing.T) {
	cfg := serveConfig(t)
	cfg.Catalog.DatabaseName = "Not-An-Identifier"

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	err = serve(context.Background(), cfg, ln)
	require.Error(t, err)

	_, err = ln.Accept()
	assert.Error(t, err)
}

func TestServe_ZeroIntervalDisablesSnapshots(t *testing.T) {
	cfg := serveConfig(t)
	cfg.Snapshot.Interval = 0

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/api/v1/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return true
	}, 5*time.Second, 20*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	_, err = os.Stat(cfg.Snapshot.Path)
	assert.True(t, os.IsNotExist(err))
}
