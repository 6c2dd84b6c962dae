// Package database provides a unified interface for connecting to the site
// registry backends.
//
// The package supports multiple database backends (PostgreSQL and SQLite) and
// exposes connection management, migrations, and schema validation through
// the Database interface.
//
// # Supported Backends
//
//   - PostgreSQL: Production-ready backend using pgx connection pool
//   - SQLite: Lightweight backend suitable for development and single-node deployments
//
// # Usage
//
//	cfg := database.Config{
//	    Type:   "sqlite",
//	    DSN:    "sitehost.db",
//	    Tables: sitehost.Tables{Sites: "sites"},
//	}
//
//	db, err := database.Connect(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	if err := db.Validate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	repo := db.GetRepo()
//
// # Subpackages
//
//   - database/postgres: PostgreSQL implementation using pgx
//   - database/sqlite: SQLite implementation using modernc.org/sqlite
package database
