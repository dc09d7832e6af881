package txn

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/hyperengineering/searchbridge/internal/catalog"
	"github.com/hyperengineering/searchbridge/internal/metrics"
)

// Manager begins catalog transactions.
type Manager struct {
	db    *sql.DB
	locks *LockManager
}

// NewManager creates a Manager over db with its own lock table.
func NewManager(db *sql.DB) *Manager {
	return &Manager{db: db, locks: NewLockManager()}
}

// Locks returns the lock table shared by all transactions of this manager.
func (m *Manager) Locks() *LockManager {
	return m.locks
}

// Begin opens a transaction. The caller must end it with Commit or Rollback;
// deferring Rollback right after Begin is safe.
func (m *Manager) Begin(ctx context.Context) (*Tx, error) {
	sqlTx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	tx := &Tx{
		id:    ulid.Make(),
		sqlTx: sqlTx,
		queue: NewQueue(),
		locks: m.locks,
		held:  make(map[catalog.OID]struct{}),
	}
	slog.Debug("transaction started",
		"component", "txn",
		"tx_id", tx.id.String(),
	)
	return tx, nil
}

// Tx is one catalog transaction together with its deferred actions and
// the relation locks it holds. It satisfies catalog.Querier.
type Tx struct {
	id    ulid.ULID
	sqlTx *sql.Tx
	queue *Queue
	locks *LockManager

	mu   sync.Mutex
	held map[catalog.OID]struct{}
	done bool
}

// ID returns the transaction identity.
func (t *Tx) ID() ulid.ULID {
	return t.id
}

func (t *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.sqlTx.ExecContext(ctx, query, args...)
}

func (t *Tx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.sqlTx.QueryContext(ctx, query, args...)
}

func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return t.sqlTx.QueryRowContext(ctx, query, args...)
}

// Register defers action until the transaction reaches event.
// It fails with ErrTxDone once the transaction has ended.
func (t *Tx) Register(event Event, action Action) error {
	return t.queue.Register(event, action)
}

// Pending returns the number of actions registered for event.
func (t *Tx) Pending(event Event) int {
	return t.queue.Len(event)
}

// LockExclusive takes an exclusive lock on oid for the rest of the transaction.
func (t *Tx) LockExclusive(ctx context.Context, oid catalog.OID) error {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return ErrTxDone
	}
	t.mu.Unlock()

	acquired, err := t.locks.AcquireExclusive(ctx, t.id, oid)
	if err != nil {
		return fmt.Errorf("lock relation %d: %w", oid, err)
	}
	if acquired {
		t.mu.Lock()
		t.held[oid] = struct{}{}
		t.mu.Unlock()
	}
	return nil
}

// Commit commits the catalog changes. When the commit succeeds the Commit
// actions run; when it fails the Abort actions run instead. Deferred action
// failures never change the result.
func (t *Tx) Commit(ctx context.Context) error {
	if !t.finish() {
		return ErrTxDone
	}
	defer t.releaseLocks()

	if err := t.sqlTx.Commit(); err != nil {
		t.end(ctx, Abort)
		return fmt.Errorf("commit transaction: %w", err)
	}
	t.end(ctx, Commit)
	return nil
}

// Rollback discards the catalog changes and runs the Abort actions.
// Calling it after Commit returns ErrTxDone and does nothing else.
func (t *Tx) Rollback(ctx context.Context) error {
	if !t.finish() {
		return ErrTxDone
	}
	defer t.releaseLocks()

	err := t.sqlTx.Rollback()
	t.end(ctx, Abort)
	if err != nil {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}

func (t *Tx) finish() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}

// end fires event. The actions outlive the caller's request, so they get a
// context that is not cancelled with it.
func (t *Tx) end(ctx context.Context, event Event) {
	metrics.Transactions.WithLabelValues(event.String()).Inc()
	failed := t.queue.Drain(context.WithoutCancel(ctx), event)
	slog.Debug("transaction finished",
		"component", "txn",
		"tx_id", t.id.String(),
		"event", event.String(),
		"failed_actions", failed,
	)
}

func (t *Tx) releaseLocks() {
	t.mu.Lock()
	held := t.held
	t.held = make(map[catalog.OID]struct{})
	t.mu.Unlock()

	for oid := range held {
		t.locks.Release(t.id, oid)
	}
}
