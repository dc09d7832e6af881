package txn

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/hyperengineering/searchbridge/internal/catalog"
)

// LockManager hands out exclusive relation locks to transactions. A lock is
// held until its owning transaction ends; there is no early release.
type LockManager struct {
	held *xsync.MapOf[catalog.OID, *lockEntry]
}

type lockEntry struct {
	owner    ulid.ULID
	released chan struct{}
}

// NewLockManager returns an empty lock table.
func NewLockManager() *LockManager {
	return &LockManager{held: xsync.NewMapOf[catalog.OID, *lockEntry]()}
}

// AcquireExclusive blocks until owner holds the lock on oid or ctx is done.
// Locks are re-entrant: acquiring a lock the owner already holds returns
// immediately with acquired == false.
func (l *LockManager) AcquireExclusive(ctx context.Context, owner ulid.ULID, oid catalog.OID) (acquired bool, err error) {
	for {
		entry := &lockEntry{owner: owner, released: make(chan struct{})}
		actual, loaded := l.held.LoadOrStore(oid, entry)
		if !loaded {
			return true, nil
		}
		if actual.owner == owner {
			return false, nil
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-actual.released:
		}
	}
}

// Release drops owner's lock on oid and wakes any waiters.
func (l *LockManager) Release(owner ulid.ULID, oid catalog.OID) {
	entry, ok := l.held.Load(oid)
	if !ok || entry.owner != owner {
		return
	}
	l.held.Delete(oid)
	close(entry.released)
}

// Owner reports which transaction holds oid, if any.
func (l *LockManager) Owner(oid catalog.OID) (ulid.ULID, bool) {
	entry, ok := l.held.Load(oid)
	if !ok {
		return ulid.ULID{}, false
	}
	return entry.owner, true
}

// Held returns the number of locks currently held.
func (l *LockManager) Held() int {
	return l.held.Size()
}
