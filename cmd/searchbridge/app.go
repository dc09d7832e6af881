package main

import (
	"fmt"
	"time"

	"github.com/hyperengineering/searchbridge/internal/catalog"
	"github.com/hyperengineering/searchbridge/internal/config"
	"github.com/hyperengineering/searchbridge/internal/ddl"
	"github.com/hyperengineering/searchbridge/internal/reconcile"
	"github.com/hyperengineering/searchbridge/internal/remote"
	"github.com/hyperengineering/searchbridge/internal/snapshot"
	"github.com/hyperengineering/searchbridge/internal/txn"
)

// app is the wired catalog stack shared by the server and the offline
// catalog commands.
type app struct {
	cfg      *config.Config
	catalog  *catalog.Catalog
	txm      *txn.Manager
	ddl      *ddl.Service
	uploader snapshot.Uploader
}

func openApp(cfg *config.Config) (*app, error) {
	cat, err := catalog.Open(cfg.Catalog.Path, cfg.Catalog.DatabaseName)
	if err != nil {
		return nil, err
	}

	uploader, err := snapshot.NewUploader(cfg.Snapshot.Storage)
	if err != nil {
		cat.Close()
		return nil, fmt.Errorf("snapshot storage: %w", err)
	}

	gov := reconcile.Governance{
		ExtensionName: cfg.Governance.ExtensionName,
		AccessMethod:  cfg.Governance.AccessMethod,
	}
	client := remote.NewHTTPClient(time.Duration(cfg.Remote.Timeout), remote.Credentials{
		Username: cfg.Remote.Username,
		Password: cfg.Remote.Password,
		APIKey:   cfg.Remote.APIKey,
	})
	rec := reconcile.New(reconcile.Config{
		Governance:     gov,
		Database:       cat.Name(),
		DefaultURL:     cfg.Remote.DefaultURL,
		DeleteLogLevel: cfg.Remote.LogLevel(),
	}, client)

	txm := txn.NewManager(cat.DB())
	return &app{
		cfg:      cfg,
		catalog:  cat,
		txm:      txm,
		ddl:      ddl.NewService(txm, rec, gov),
		uploader: uploader,
	}, nil
}

func (a *app) Close() error {
	return a.catalog.Close()
}
