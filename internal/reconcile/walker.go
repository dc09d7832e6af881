package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperengineering/searchbridge/internal/catalog"
	"github.com/hyperengineering/searchbridge/internal/txn"
)

// Tx is the part of a catalog transaction the walker and reconciler use.
// *txn.Tx implements it.
type Tx interface {
	catalog.Querier
	Register(event txn.Event, action txn.Action) error
	LockExclusive(ctx context.Context, oid catalog.OID) error
}

// ScopeKind is the granularity of a drop.
type ScopeKind int

const (
	ScopeIndex ScopeKind = iota
	ScopeTable
	ScopeSchema
	ScopeExtension
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeIndex:
		return "index"
	case ScopeTable:
		return "table"
	case ScopeSchema:
		return "schema"
	case ScopeExtension:
		return "extension"
	default:
		return fmt.Sprintf("scope(%d)", int(k))
	}
}

// Scope names the catalog object being dropped.
type Scope struct {
	Kind ScopeKind
	OID  catalog.OID
}

// Governance identifies what belongs to this system in the catalog.
type Governance struct {
	ExtensionName string
	AccessMethod  string
}

// Walker enumerates the indexes governed by a drop scope.
type Walker struct {
	gov Governance
}

// NewWalker creates a walker for the given governance settings.
func NewWalker(gov Governance) *Walker {
	return &Walker{gov: gov}
}

// Enumerate returns the indexes inside scope as a lazy, single-pass sequence.
// Every index is locked exclusively as it is yielded, and the lock is kept
// until tx ends.
//
// Index scope yields the index itself and table scope yields every index on
// the table; callers filter those with the governance predicate. Schema and
// extension scopes only yield indexes built with the governed access method.
// Extension scope is empty unless the extension is the governed one.
func (w *Walker) Enumerate(ctx context.Context, tx Tx, scope Scope) (*Indexes, error) {
	var rows *catalog.IndexRows
	var err error

	switch scope.Kind {
	case ScopeIndex:
		return &Indexes{ctx: ctx, tx: tx, single: scope.OID, rows: catalog.EmptyIndexRows()}, nil
	case ScopeTable:
		rows, err = catalog.TableIndexes(ctx, tx, scope.OID)
	case ScopeSchema:
		rows, err = catalog.IndexesInNamespace(ctx, tx, scope.OID, w.gov.AccessMethod)
	case ScopeExtension:
		owned, ownErr := w.ownsExtension(ctx, tx, scope.OID)
		if ownErr != nil {
			return nil, ownErr
		}
		if !owned {
			rows = catalog.EmptyIndexRows()
			break
		}
		rows, err = catalog.IndexesByAccessMethod(ctx, tx, w.gov.AccessMethod)
	default:
		return nil, fmt.Errorf("enumerate: unknown %s", scope.Kind)
	}
	if err != nil {
		return nil, err
	}
	return &Indexes{ctx: ctx, tx: tx, rows: rows}, nil
}

func (w *Walker) ownsExtension(ctx context.Context, tx Tx, extension catalog.OID) (bool, error) {
	ext, err := catalog.GetExtension(ctx, tx, w.gov.ExtensionName)
	if errors.Is(err, catalog.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return ext.OID == extension, nil
}

// Indexes is the sequence produced by Enumerate. It cannot be restarted.
type Indexes struct {
	ctx    context.Context
	tx     Tx
	rows   *catalog.IndexRows
	single catalog.OID
	cur    catalog.OID
	err    error
}

// Next locks and yields the next index.
func (s *Indexes) Next() bool {
	if s.err != nil {
		return false
	}

	var next catalog.OID
	switch {
	case s.single != catalog.InvalidOID:
		next, s.single = s.single, catalog.InvalidOID
	case s.rows.Next():
		next = s.rows.OID()
	default:
		return false
	}

	if err := s.tx.LockExclusive(s.ctx, next); err != nil {
		s.err = err
		return false
	}
	s.cur = next
	return true
}

// OID returns the current index.
func (s *Indexes) OID() catalog.OID {
	return s.cur
}

// Err returns the first error met while walking.
func (s *Indexes) Err() error {
	if s.err != nil {
		return s.err
	}
	return s.rows.Err()
}

// Close releases the catalog cursor. Locks stay held.
func (s *Indexes) Close() error {
	return s.rows.Close()
}
