// Package reconcile ties remote index lifetimes to catalog transactions.
//
// A drop never touches the remote engine directly. It registers one delete
// per governed index with the transaction, and the delete runs only if the
// transaction commits.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hyperengineering/searchbridge/internal/catalog"
	"github.com/hyperengineering/searchbridge/internal/metrics"
	"github.com/hyperengineering/searchbridge/internal/remote"
	"github.com/hyperengineering/searchbridge/internal/txn"
)

// Config configures a Reconciler.
type Config struct {
	Governance
	// Database is the catalog database name used in remote index names.
	Database string
	// DefaultURL is the remote endpoint for indexes without a url option.
	DefaultURL string
	// DeleteLogLevel is the level of the "deleting remote index" line.
	DeleteLogLevel slog.Level
}

// Reconciler registers commit-deferred remote deletes for dropped indexes.
// It only reads the catalog.
type Reconciler struct {
	cfg    Config
	walker *Walker
	client remote.Client
}

// New creates a Reconciler that deletes through client.
func New(cfg Config, client remote.Client) *Reconciler {
	return &Reconciler{
		cfg:    cfg,
		walker: NewWalker(cfg.Governance),
		client: client,
	}
}

// OnIndexDrop registers a remote delete if index is governed.
func (r *Reconciler) OnIndexDrop(ctx context.Context, tx Tx, index catalog.OID) (int, error) {
	return r.Drop(ctx, tx, Scope{Kind: ScopeIndex, OID: index})
}

// OnTableDrop registers a remote delete for every governed index on table.
func (r *Reconciler) OnTableDrop(ctx context.Context, tx Tx, table catalog.OID) (int, error) {
	return r.Drop(ctx, tx, Scope{Kind: ScopeTable, OID: table})
}

// OnSchemaDrop registers a remote delete for every governed index in schema.
func (r *Reconciler) OnSchemaDrop(ctx context.Context, tx Tx, schema catalog.OID) (int, error) {
	return r.Drop(ctx, tx, Scope{Kind: ScopeSchema, OID: schema})
}

// OnExtensionDrop registers a remote delete for every governed index in the
// catalog, but only when extension is the governed extension.
func (r *Reconciler) OnExtensionDrop(ctx context.Context, tx Tx, extension catalog.OID) (int, error) {
	return r.Drop(ctx, tx, Scope{Kind: ScopeExtension, OID: extension})
}

// Drop walks scope and registers one deferred delete per governed index.
// It returns how many deletes were registered.
func (r *Reconciler) Drop(ctx context.Context, tx Tx, scope Scope) (int, error) {
	indexes, err := r.walker.Enumerate(ctx, tx, scope)
	if err != nil {
		return 0, fmt.Errorf("enumerate %s %d: %w", scope.Kind, scope.OID, err)
	}
	defer indexes.Close()

	registered := 0
	for indexes.Next() {
		ok, err := r.registerDelete(ctx, tx, indexes.OID())
		if err != nil {
			return registered, err
		}
		if ok {
			registered++
		}
	}
	if err := indexes.Err(); err != nil {
		return registered, fmt.Errorf("enumerate %s %d: %w", scope.Kind, scope.OID, err)
	}

	metrics.DropRegistrations.WithLabelValues(scope.Kind.String()).Add(float64(registered))
	if registered > 0 {
		slog.Info("remote index deletes registered",
			"component", "reconcile",
			"action", "deletes_registered",
			"scope", scope.Kind.String(),
			"oid", int64(scope.OID),
			"count", registered,
		)
	}
	return registered, nil
}

// registerDelete captures the remote index by value and defers its deletion
// to commit. Ungoverned indexes are skipped.
func (r *Reconciler) registerDelete(ctx context.Context, tx Tx, index catalog.OID) (bool, error) {
	governed, err := catalog.IsGoverned(ctx, tx, index, r.cfg.AccessMethod)
	if err != nil {
		return false, err
	}
	if !governed {
		return false, nil
	}

	md, err := catalog.GetIndexMetadata(ctx, tx, index)
	if err != nil {
		return false, err
	}
	target := remote.ForIndex(r.cfg.Database, md, r.cfg.DefaultURL)
	client := r.client
	level := r.cfg.DeleteLogLevel

	err = tx.Register(txn.Commit, func(ctx context.Context) error {
		slog.Log(ctx, level, "deleting remote index",
			"component", "reconcile",
			"action", "remote_delete",
			"url", target.URL(),
		)
		if err := target.Delete(ctx, client); err != nil {
			return fmt.Errorf("delete remote index %s: %w", target.URL(), err)
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("register remote delete: %w", err)
	}
	return true, nil
}
