package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hyperengineering/searchbridge/internal/snapshot"
)

// Snapshotter writes a consistent copy of a catalog. *catalog.Catalog
// implements it.
type Snapshotter interface {
	Name() string
	Snapshot(ctx context.Context, destPath string) error
}

// SnapshotWorker snapshots the catalog on an interval and uploads each
// snapshot. An upload failure leaves the local snapshot in place.
type SnapshotWorker struct {
	catalog  Snapshotter
	uploader snapshot.Uploader
	path     string
	interval time.Duration
}

// NewSnapshotWorker creates a worker writing snapshots to path.
// A nil uploader keeps snapshots local.
func NewSnapshotWorker(catalog Snapshotter, uploader snapshot.Uploader, path string, interval time.Duration) *SnapshotWorker {
	if uploader == nil {
		uploader = &snapshot.NoopUploader{}
	}
	return &SnapshotWorker{
		catalog:  catalog,
		uploader: uploader,
		path:     path,
		interval: interval,
	}
}

// Run starts the worker loop. It snapshots immediately on start, then on
// each interval, until ctx is cancelled. A snapshot in progress when ctx is
// cancelled runs to completion.
func (w *SnapshotWorker) Run(ctx context.Context) {
	slog.Info("worker started",
		"component", "worker",
		"worker", "snapshot",
		"action", "worker_started",
		"interval", w.interval.String(),
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.runLogged(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped",
				"component", "worker",
				"worker", "snapshot",
				"action", "worker_stopped",
				"reason", "context_cancelled",
			)
			return
		case <-ticker.C:
			w.runLogged(ctx)
		}
	}
}

func (w *SnapshotWorker) runLogged(ctx context.Context) {
	if err := w.RunOnce(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Warn("catalog snapshot failed",
			"component", "worker",
			"worker", "snapshot",
			"action", "snapshot_failed",
			"error", err,
		)
	}
}

// RunOnce writes one snapshot and uploads it. Only a failed snapshot is
// returned as an error; a failed upload is logged.
func (w *SnapshotWorker) RunOnce(ctx context.Context) error {
	start := time.Now()
	// The copy is not interrupted by shutdown; VACUUM INTO runs to completion.
	if err := w.catalog.Snapshot(context.WithoutCancel(ctx), w.path); err != nil {
		return fmt.Errorf("snapshot catalog: %w", err)
	}
	slog.Info("catalog snapshot written",
		"component", "worker",
		"worker", "snapshot",
		"action", "snapshot_written",
		"path", w.path,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if err := w.uploader.Upload(ctx, w.catalog.Name(), w.path); err != nil {
		slog.Warn("snapshot upload failed",
			"component", "worker",
			"worker", "snapshot",
			"action", "snapshot_upload_failed",
			"database", w.catalog.Name(),
			"error", err,
		)
	}
	return nil
}
