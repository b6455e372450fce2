package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amww/loja"
	"github.com/amww/loja/config"
	"github.com/amww/loja/database"
	"github.com/amww/loja/filesystem"
)

// app holds the backends every command works against.
type app struct {
	db       database.Database
	store    *filesystem.Store
	catalog  *loja.Catalog
	identity *loja.Identity
	closers  []func() error
}

// openApp connects the database, opens the image directory and builds the
// services on top of them.
func openApp(ctx context.Context, cfg *config.Config) (*app, error) {
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	slog.Info("connected to database", "type", cfg.Database.Type)

	a := &app{db: db, closers: []func() error{db.Close}}

	store, closeStore, err := filesystem.Open(cfg.Storage.Path)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("open storage: %w", err)
	}
	a.store = store
	a.closers = append(a.closers, closeStore)

	a.catalog, err = loja.NewCatalog(db.Products(), store, loja.CatalogConfig{
		PageSize:       cfg.Catalog.PageSize,
		PublicPath:     cfg.Storage.PublicPath,
		CleanupTimeout: time.Duration(cfg.Service.CleanupTimeout) * time.Second,
	})
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("create catalog: %w", err)
	}

	a.identity, err = loja.NewIdentity(db.Accounts())
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("create identity: %w", err)
	}

	return a, nil
}

// Close releases the backends in reverse order of opening.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
