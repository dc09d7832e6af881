package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hyperengineering/searchbridge/internal/api"
	"github.com/hyperengineering/searchbridge/internal/config"
	"github.com/hyperengineering/searchbridge/internal/logging"
	"github.com/hyperengineering/searchbridge/internal/worker"
)

// Version is set at build time via ldflags: -ldflags "-X main.Version=1.0.0"
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "searchbridge",
	Short: "Searchbridge - catalog bridge to a remote search engine",
	Long: "Runs the catalog HTTP service. Dropping a governed index, or anything that\n" +
		"contains one, deletes its remote search index once the drop commits.",
	SilenceUsage: true,
	RunE:         run,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(termCmd)
	rootCmd.AddCommand(catalogCmd)
}

func run(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, flush := logging.Setup(os.Stdout, cfg.Log)
	defer flush()
	slog.SetDefault(logger)
	slog.Info("logger initialized", "level", cfg.Log.Level, "format", cfg.Log.Format)

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return serve(ctx, cfg, ln)
}

// serve runs the HTTP server and the snapshot worker on ln until ctx is
// cancelled or the server fails, then shuts both down.
func serve(ctx context.Context, cfg *config.Config, ln net.Listener) error {
	a, err := openApp(cfg)
	if err != nil {
		ln.Close()
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Error("catalog close error", "error", err)
		}
	}()
	slog.Info("catalog initialized", "path", cfg.Catalog.Path, "database", a.catalog.Name())

	if cfg.Auth.APIKey == "" {
		slog.Warn("no API key configured, authentication disabled", "component", "api")
	}
	handler := api.NewHandler(a.catalog, a.ddl, a.txm.Locks(), a.uploader, cfg.Auth.APIKey, Version)
	srv := &http.Server{
		Handler:      api.NewRouter(handler, cfg.Metrics.Enabled),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server starting", "address", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	// A zero interval disables periodic snapshots.
	if interval := time.Duration(cfg.Snapshot.Interval); interval > 0 {
		snapshots := worker.NewSnapshotWorker(a.catalog, a.uploader, cfg.Snapshot.Path, interval)
		g.Go(func() error {
			snapshots.Run(gctx)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown initiated")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
			time.Duration(cfg.Server.ShutdownTimeout))
		defer shutdownCancel()
		// Shutdown drains in-flight requests, including the remote deletes
		// of drops that are committing.
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	err = g.Wait()
	slog.Info("shutdown complete")
	return err
}
