//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hyperengineering/searchbridge/pkg/client"
)

// searchbridgeServer manages a running searchbridge process.
type searchbridgeServer struct {
	cmd     *exec.Cmd
	dataDir string
	logFile string
	client  *client.Client
}

// startSearchbridge launches the binary configured only through the
// environment and waits for it to become healthy.
func startSearchbridge(t *testing.T, engineURL string) *searchbridgeServer {
	t.Helper()
	requireSearchbridge(t)

	dataDir := t.TempDir()
	port := freePort(t)
	logFile := filepath.Join(dataDir, "searchbridge.log")

	cmd := exec.Command(searchbridgeBin)
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("SEARCHBRIDGE_PORT=%d", port),
		"SEARCHBRIDGE_CATALOG_PATH="+filepath.Join(dataDir, "catalog.db"),
		"SEARCHBRIDGE_SNAPSHOT_PATH="+filepath.Join(dataDir, "snapshots", "catalog.db"),
		"SEARCHBRIDGE_API_KEY="+testAPIKey,
		"SEARCHBRIDGE_CONFIG_PATH="+filepath.Join(dataDir, "nonexistent.yaml"),
		"SEARCHBRIDGE_REMOTE_URL="+engineURL,
		"SEARCHBRIDGE_DATABASE_NAME=shop",
		"SEARCHBRIDGE_LOG_FORMAT=json",
	)

	lf, err := os.Create(logFile)
	if err != nil {
		t.Fatalf("create log file: %v", err)
	}
	cmd.Stdout = lf
	cmd.Stderr = lf

	if err := cmd.Start(); err != nil {
		lf.Close()
		t.Fatalf("start searchbridge: %v", err)
	}

	s := &searchbridgeServer{
		cmd:     cmd,
		dataDir: dataDir,
		logFile: logFile,
		client:  client.New(fmt.Sprintf("http://127.0.0.1:%d", port), testAPIKey),
	}
	t.Cleanup(func() {
		s.stop()
		lf.Close()
	})

	if err := s.waitHealthy(10 * time.Second); err != nil {
		logs, _ := os.ReadFile(logFile)
		t.Fatalf("searchbridge not healthy: %v\n%s", err, logs)
	}
	return s
}

func (s *searchbridgeServer) stop() {
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Signal(os.Interrupt)
		_ = s.cmd.Wait()
	}
}

func (s *searchbridgeServer) waitHealthy(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		_, err := s.client.Health(ctx)
		cancel()
		if err == nil {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("searchbridge not healthy after %s", timeout)
}

func TestBinary_DropReachesRemoteEngine(t *testing.T) {
	engine := newFakeEngine(t)
	s := startSearchbridge(t, engine.URL)
	ctx := context.Background()

	if _, err := s.client.CreateExtension(ctx, "searchbridge", "1.0"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.client.CreateSchema(ctx, "public"); err != nil {
		t.Fatal(err)
	}
	table, err := s.client.CreateTable(ctx, "public", "products")
	if err != nil {
		t.Fatal(err)
	}
	idx, err := s.client.CreateIndex(ctx, createIndexRequest("public", "products", "idx_title", "searchbridge"))
	if err != nil {
		t.Fatal(err)
	}

	res, err := s.client.DropTable(ctx, table.OID)
	if err != nil {
		t.Fatal(err)
	}
	if res.RemoteDeletes != 1 {
		t.Errorf("RemoteDeletes = %d, want 1", res.RemoteDeletes)
	}

	want := remoteName("shop", "public", "products", "idx_title", idx.OID)
	if got := engine.deleted(); len(got) != 1 || got[0] != want {
		t.Errorf("engine deletes = %v, want [%s]", got, want)
	}
}

func TestBinary_GracefulShutdownWritesFinalLog(t *testing.T) {
	engine := newFakeEngine(t)
	s := startSearchbridge(t, engine.URL)

	s.stop()

	logs, err := os.ReadFile(s.logFile)
	if err != nil {
		t.Fatal(err)
	}
	for _, msg := range []string{"server starting", "shutdown initiated", "shutdown complete"} {
		if !strings.Contains(string(logs), msg) {
			t.Errorf("log missing %q:\n%s", msg, logs)
		}
	}
}

func TestBinary_TermCompiles(t *testing.T) {
	engine := newFakeEngine(t)
	s := startSearchbridge(t, engine.URL)

	q, err := s.client.Term(context.Background(), "created", "date", "2024-02-29", nil)
	if err != nil {
		t.Fatal(err)
	}
	if q.Kind != "date" {
		t.Errorf("Kind = %q, want date", q.Kind)
	}
	if want := `{"term":{"created":{"value":"2024-02-29"}}}`; string(q.Query) != want {
		t.Errorf("Query = %s, want %s", q.Query, want)
	}
}
