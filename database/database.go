package database

import (
	"context"
	"fmt"

	"github.com/sagarc03/sitehost"
	"github.com/sagarc03/sitehost/database/postgres"
	"github.com/sagarc03/sitehost/database/sqlite"
)

// Config holds the configuration for connecting to a registry backend.
type Config struct {
	// Type specifies the database type: "sqlite" or "postgres"
	Type string `mapstructure:"type" validate:"required,oneof=sqlite postgres"`
	// DSN is the data source name (connection string)
	DSN string `mapstructure:"dsn" validate:"required"`
	// Tables holds the table names used by the registry
	Tables sitehost.Tables `mapstructure:"tables"`
	// AutoMigrate asks the server to create missing tables on startup.
	// Connect itself never migrates.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// Database is a connected registry backend.
type Database interface {
	// Ping verifies the connection is alive.
	Ping(ctx context.Context) error
	// Migrate creates the registry tables if they do not exist.
	Migrate(ctx context.Context) error
	// Validate checks that existing tables match the expected schema.
	Validate(ctx context.Context) error
	// GetRepo returns the site registry backed by this database.
	GetRepo() sitehost.SiteRepo
	// Close releases the connection.
	Close() error
}

// Connect opens a connection to the configured backend. It does not migrate
// or validate; callers decide which of those to run.
func Connect(ctx context.Context, cfg Config) (Database, error) {
	if err := cfg.Tables.Validate(); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	switch cfg.Type {
	case "sqlite":
		db, err := sqlite.Connect(ctx, cfg.DSN, cfg.Tables)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.DSN, cfg.Tables)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}
