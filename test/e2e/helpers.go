package e2e

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hyperengineering/searchbridge/internal/api"
	"github.com/hyperengineering/searchbridge/internal/catalog"
	"github.com/hyperengineering/searchbridge/internal/ddl"
	"github.com/hyperengineering/searchbridge/internal/reconcile"
	"github.com/hyperengineering/searchbridge/internal/remote"
	"github.com/hyperengineering/searchbridge/internal/snapshot"
	"github.com/hyperengineering/searchbridge/internal/txn"
	"github.com/hyperengineering/searchbridge/internal/types"
	"github.com/hyperengineering/searchbridge/pkg/client"
)

const testAPIKey = "e2e-test-api-key"

// --- Fake search engine ---

type engineCall struct {
	Name          string
	Authorization string
}

// fakeEngine stands in for the remote search engine. Index names listed in
// fail answer 500, names in missing answer 404, everything else 200.
type fakeEngine struct {
	*httptest.Server
	mu      sync.Mutex
	calls   []engineCall
	fail    map[string]bool
	missing map[string]bool
}

func newFakeEngine(t *testing.T) *fakeEngine {
	t.Helper()
	e := &fakeEngine{fail: map[string]bool{}, missing: map[string]bool{}}
	e.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		name := strings.TrimPrefix(r.URL.Path, "/")
		e.mu.Lock()
		e.calls = append(e.calls, engineCall{Name: name, Authorization: r.Header.Get("Authorization")})
		fail, missing := e.fail[name], e.missing[name]
		e.mu.Unlock()

		switch {
		case fail:
			http.Error(w, `{"error":"shard failure"}`, http.StatusInternalServerError)
		case missing:
			http.Error(w, `{"error":"index_not_found_exception"}`, http.StatusNotFound)
		default:
			fmt.Fprint(w, `{"acknowledged":true}`)
		}
	}))
	t.Cleanup(e.Close)
	return e
}

func (e *fakeEngine) deleted() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	names := make([]string, len(e.calls))
	for i, c := range e.calls {
		names[i] = c.Name
	}
	return names
}

func (e *fakeEngine) lastCall() engineCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.calls) == 0 {
		return engineCall{}
	}
	return e.calls[len(e.calls)-1]
}

func (e *fakeEngine) failOn(name string) {
	e.mu.Lock()
	e.fail[name] = true
	e.mu.Unlock()
}

func (e *fakeEngine) missingOn(name string) {
	e.mu.Lock()
	e.missing[name] = true
	e.mu.Unlock()
}

// --- In-process stack ---

// stack is a full searchbridge server wired the way the binary wires it,
// served over a real listener and driven through pkg/client.
type stack struct {
	server  *httptest.Server
	engine  *fakeEngine
	catalog *catalog.Catalog
	client  *client.Client
}

type stackOption func(*stackConfig)

type stackConfig struct {
	uploader snapshot.Uploader
	creds    remote.Credentials
}

func withUploader(u snapshot.Uploader) stackOption {
	return func(c *stackConfig) { c.uploader = u }
}

func withCredentials(creds remote.Credentials) stackOption {
	return func(c *stackConfig) { c.creds = creds }
}

func newStack(t *testing.T, opts ...stackOption) *stack {
	t.Helper()
	var cfg stackConfig
	for _, o := range opts {
		o(&cfg)
	}

	cat, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"), "shop")
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	t.Cleanup(func() { cat.Close() })

	engine := newFakeEngine(t)
	gov := reconcile.Governance{ExtensionName: "searchbridge", AccessMethod: "searchbridge"}
	rec := reconcile.New(reconcile.Config{
		Governance: gov,
		Database:   cat.Name(),
		DefaultURL: engine.URL,
	}, remote.NewHTTPClient(5*time.Second, cfg.creds))

	txm := txn.NewManager(cat.DB())
	h := api.NewHandler(cat, ddl.NewService(txm, rec, gov), txm.Locks(), cfg.uploader, testAPIKey, "e2e")
	srv := httptest.NewServer(api.NewRouter(h, true))
	t.Cleanup(srv.Close)

	return &stack{
		server:  srv,
		engine:  engine,
		catalog: cat,
		client:  client.New(srv.URL, testAPIKey),
	}
}

// seedShop installs the extension and builds public.products with a
// governed title index and a btree primary key.
func (s *stack) seedShop(t *testing.T) (table, governed, btree *catalog.Relation) {
	t.Helper()
	ctx := context.Background()
	mustDo(t, func() error { _, err := s.client.CreateExtension(ctx, "searchbridge", "1.0"); return err })
	mustDo(t, func() error { _, err := s.client.CreateSchema(ctx, "public"); return err })

	table, err := s.client.CreateTable(ctx, "public", "products")
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	governed = s.createIndex(t, "public", "products", "idx_title", "searchbridge")
	btree = s.createIndex(t, "public", "products", "products_pkey", "btree")
	return table, governed, btree
}

func (s *stack) createIndex(t *testing.T, schema, table, name, am string) *catalog.Relation {
	t.Helper()
	idx, err := s.client.CreateIndex(context.Background(), createIndexRequest(schema, table, name, am))
	if err != nil {
		t.Fatalf("create index %s: %v", name, err)
	}
	return idx
}

func createIndexRequest(schema, table, name, am string) types.CreateIndexRequest {
	return types.CreateIndexRequest{Schema: schema, Table: table, Name: name, AccessMethod: am}
}

func remoteName(database, schema, table, index string, oid catalog.OID) string {
	return strings.ToLower(fmt.Sprintf("%s.%s.%s.%s-%d", database, schema, table, index, oid))
}

func mustDo(t *testing.T, fn func() error) {
	t.Helper()
	if err := fn(); err != nil {
		t.Fatal(err)
	}
}

// freePort returns a free TCP port.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("find free port: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}
