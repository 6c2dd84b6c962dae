package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/sagarc03/sitehost"
	"github.com/sagarc03/sitehost/config"
	"github.com/sagarc03/sitehost/database"
	"github.com/sagarc03/sitehost/filesystem"
)

// app bundles the pieces every subcommand needs. close releases them in
// reverse order of acquisition.
type app struct {
	db      database.Database
	root    *os.Root
	storage *filesystem.Store
	service *sitehost.SiteService
}

func (a *app) close() {
	if a.root != nil {
		_ = a.root.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

// openDatabase connects, pings, optionally migrates, and validates the
// registry schema.
func openDatabase(ctx context.Context, cfg database.Config, migrate bool) (database.Database, error) {
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err = db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if migrate {
		if err = db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		slog.Info("database migration complete")
	}

	if err = db.Validate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("validate database schema: %w", err)
	}

	return db, nil
}

// openApp wires database, storage, and service from cfg. When createStorage
// is false the storage directory must already exist.
func openApp(ctx context.Context, cfg *config.Config, migrate, createStorage bool) (*app, error) {
	a := &app{}

	db, err := openDatabase(ctx, cfg.Database, migrate)
	if err != nil {
		return nil, err
	}
	a.db = db
	slog.Info("connected to database", "type", cfg.Database.Type)

	if createStorage {
		if err := os.MkdirAll(cfg.Storage.Path, 0o750); err != nil {
			a.close()
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	} else if _, err := os.Stat(cfg.Storage.Path); os.IsNotExist(err) {
		a.close()
		return nil, fmt.Errorf("storage directory does not exist: %s", cfg.Storage.Path)
	}

	root, err := os.OpenRoot(cfg.Storage.Path)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("open storage root: %w", err)
	}
	a.root = root

	storage, err := filesystem.NewFileStorage(root)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("open storage: %w", err)
	}
	a.storage = storage

	service, err := sitehost.NewSiteService(db.GetRepo(), storage, cfg.SiteServiceConfig())
	if err != nil {
		a.close()
		return nil, fmt.Errorf("create service: %w", err)
	}
	a.service = service

	return a, nil
}
