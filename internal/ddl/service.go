// Package ddl executes catalog definition statements. Drops run inside a
// catalog transaction and fire the remote index hooks before any row is
// removed, so the hooks still see what is being dropped.
package ddl

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hyperengineering/searchbridge/internal/catalog"
	"github.com/hyperengineering/searchbridge/internal/reconcile"
	"github.com/hyperengineering/searchbridge/internal/txn"
)

// DropHook is called inside the dropping transaction, before the catalog
// rows go away. *reconcile.Reconciler implements it.
type DropHook interface {
	Drop(ctx context.Context, tx reconcile.Tx, scope reconcile.Scope) (int, error)
}

// DropResult reports a completed drop.
type DropResult struct {
	Scope         string      `json:"scope"`
	OID           catalog.OID `json:"oid"`
	RemoteDeletes int         `json:"remote_deletes"`
}

// Service runs DDL against one catalog.
type Service struct {
	txm  *txn.Manager
	hook DropHook
	gov  reconcile.Governance
}

// NewService creates a Service. gov decides which access method an
// extension registers when it is created.
func NewService(txm *txn.Manager, hook DropHook, gov reconcile.Governance) *Service {
	return &Service{txm: txm, hook: hook, gov: gov}
}

// inTx runs fn in a transaction and commits when fn succeeds.
func (s *Service) inTx(ctx context.Context, fn func(tx *txn.Tx) error) error {
	tx, err := s.txm.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// CreateExtension installs an extension. The governed extension registers
// the governed access method.
func (s *Service) CreateExtension(ctx context.Context, name, version string) (*catalog.Extension, error) {
	var ams []string
	if name == s.gov.ExtensionName {
		ams = append(ams, s.gov.AccessMethod)
	}
	var ext *catalog.Extension
	err := s.inTx(ctx, func(tx *txn.Tx) error {
		var err error
		ext, err = catalog.CreateExtension(ctx, tx, name, version, ams...)
		return err
	})
	if err != nil {
		return nil, err
	}
	slog.Info("extension created",
		"component", "ddl",
		"action", "create_extension",
		"name", name,
		"oid", int64(ext.OID),
	)
	return ext, nil
}

// CreateSchema creates a namespace.
func (s *Service) CreateSchema(ctx context.Context, name string) (*catalog.Namespace, error) {
	var ns *catalog.Namespace
	err := s.inTx(ctx, func(tx *txn.Tx) error {
		var err error
		ns, err = catalog.CreateNamespace(ctx, tx, name)
		return err
	})
	return ns, err
}

// CreateTable creates a table in schema.
func (s *Service) CreateTable(ctx context.Context, schema, name string) (*catalog.Relation, error) {
	var rel *catalog.Relation
	err := s.inTx(ctx, func(tx *txn.Tx) error {
		ns, err := catalog.GetNamespace(ctx, tx, schema)
		if err != nil {
			return err
		}
		rel, err = catalog.CreateTable(ctx, tx, ns.OID, name)
		return err
	})
	return rel, err
}

// CreateIndex creates an index on schema.table using accessMethod.
func (s *Service) CreateIndex(ctx context.Context, schema, table, name, accessMethod string, options map[string]string) (*catalog.Relation, error) {
	var rel *catalog.Relation
	err := s.inTx(ctx, func(tx *txn.Tx) error {
		tbl, err := catalog.LookupRelation(ctx, tx, schema, table)
		if err != nil {
			return err
		}
		if tbl.Kind != catalog.KindTable {
			return fmt.Errorf("%w: %s.%s is not a table", catalog.ErrWrongKind, schema, table)
		}
		rel, err = catalog.CreateIndex(ctx, tx, tbl.OID, name, accessMethod, options)
		return err
	})
	if err != nil {
		return nil, err
	}
	slog.Info("index created",
		"component", "ddl",
		"action", "create_index",
		"index", schema+"."+name,
		"access_method", accessMethod,
		"oid", int64(rel.OID),
	)
	return rel, nil
}

// ListIndexes lists every index in the catalog.
func (s *Service) ListIndexes(ctx context.Context) ([]catalog.IndexInfo, error) {
	var out []catalog.IndexInfo
	err := s.inTx(ctx, func(tx *txn.Tx) error {
		var err error
		out, err = catalog.ListIndexes(ctx, tx)
		return err
	})
	return out, err
}

// DropIndex drops one index.
func (s *Service) DropIndex(ctx context.Context, index catalog.OID) (*DropResult, error) {
	return s.drop(ctx, reconcile.Scope{Kind: reconcile.ScopeIndex, OID: index},
		func(tx *txn.Tx) error {
			return requireKind(ctx, tx, index, catalog.KindIndex)
		}, catalog.DeleteIndex)
}

// DropTable drops a table and its indexes.
func (s *Service) DropTable(ctx context.Context, table catalog.OID) (*DropResult, error) {
	return s.drop(ctx, reconcile.Scope{Kind: reconcile.ScopeTable, OID: table},
		func(tx *txn.Tx) error {
			return requireKind(ctx, tx, table, catalog.KindTable)
		}, catalog.DeleteTable)
}

// DropSchema drops a schema and everything in it.
func (s *Service) DropSchema(ctx context.Context, schema catalog.OID) (*DropResult, error) {
	return s.drop(ctx, reconcile.Scope{Kind: reconcile.ScopeSchema, OID: schema},
		func(tx *txn.Tx) error {
			_, err := catalog.GetNamespaceByOID(ctx, tx, schema)
			return err
		}, catalog.DeleteNamespace)
}

// DropExtension drops an installed extension by name. Dropping the
// governed extension drops every governed index with it.
func (s *Service) DropExtension(ctx context.Context, name string) (*DropResult, error) {
	var result *DropResult
	err := s.inTx(ctx, func(tx *txn.Tx) error {
		ext, err := catalog.GetExtension(ctx, tx, name)
		if err != nil {
			return err
		}
		result, err = s.dropIn(ctx, tx, reconcile.Scope{Kind: reconcile.ScopeExtension, OID: ext.OID}, catalog.DeleteExtension)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logDrop(result)
	return result, nil
}

func (s *Service) drop(ctx context.Context, scope reconcile.Scope, check func(tx *txn.Tx) error,
	del func(context.Context, catalog.Querier, catalog.OID) error) (*DropResult, error) {
	var result *DropResult
	err := s.inTx(ctx, func(tx *txn.Tx) error {
		if err := check(tx); err != nil {
			return err
		}
		var err error
		result, err = s.dropIn(ctx, tx, scope, del)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logDrop(result)
	return result, nil
}

// dropIn fires the hook, then removes the rows. A failure in either leaves
// the transaction to be rolled back, which discards the registered deletes.
func (s *Service) dropIn(ctx context.Context, tx *txn.Tx, scope reconcile.Scope,
	del func(context.Context, catalog.Querier, catalog.OID) error) (*DropResult, error) {
	n, err := s.hook.Drop(ctx, tx, scope)
	if err != nil {
		return nil, fmt.Errorf("drop %s hook: %w", scope.Kind, err)
	}
	if err := del(ctx, tx, scope.OID); err != nil {
		return nil, err
	}
	return &DropResult{Scope: scope.Kind.String(), OID: scope.OID, RemoteDeletes: n}, nil
}

func (s *Service) logDrop(r *DropResult) {
	slog.Info("catalog object dropped",
		"component", "ddl",
		"action", "drop",
		"scope", r.Scope,
		"oid", int64(r.OID),
		"remote_deletes", r.RemoteDeletes,
	)
}

func requireKind(ctx context.Context, q catalog.Querier, oid catalog.OID, kind catalog.RelKind) error {
	rel, err := catalog.GetRelation(ctx, q, oid)
	if err != nil {
		return err
	}
	if rel.Kind != kind {
		return fmt.Errorf("%w: relation %d", catalog.ErrWrongKind, oid)
	}
	return nil
}
