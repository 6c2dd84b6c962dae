package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/sagarc03/sitehost"
	"github.com/sagarc03/sitehost/database/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabase_Validate(t *testing.T) {
	ctx := context.Background()

	t.Run("fails before migration", func(t *testing.T) {
		db, err := sqlite.Connect(ctx, ":memory:", sitehost.Tables{Sites: "sites"})
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		err = db.Validate(ctx)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("passes after migration", func(t *testing.T) {
		db, err := sqlite.Connect(ctx, ":memory:", sitehost.Tables{Sites: "sites"})
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		require.NoError(t, db.Migrate(ctx))
		assert.NoError(t, db.Validate(ctx))
	})

	t.Run("reports missing columns", func(t *testing.T) {
		raw, err := sql.Open("sqlite", ":memory:")
		require.NoError(t, err)
		raw.SetMaxOpenConns(1)
		defer func() { _ = raw.Close() }()

		_, err = raw.ExecContext(ctx, `CREATE TABLE "sites" (id TEXT NOT NULL PRIMARY KEY, slug TEXT NOT NULL)`)
		require.NoError(t, err)

		err = sqlite.ValidateSchema(ctx, raw, sitehost.Tables{Sites: "sites"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing columns")
		assert.Contains(t, err.Error(), "size_bytes")
	})

	t.Run("reports nullable and mistyped columns", func(t *testing.T) {
		raw, err := sql.Open("sqlite", ":memory:")
		require.NoError(t, err)
		raw.SetMaxOpenConns(1)
		defer func() { _ = raw.Close() }()

		_, err = raw.ExecContext(ctx, `CREATE TABLE "sites" (
			id TEXT NOT NULL PRIMARY KEY,
			name TEXT,
			slug TEXT NOT NULL UNIQUE,
			size_bytes TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`)
		require.NoError(t, err)

		err = sqlite.ValidateSchema(ctx, raw, sitehost.Tables{Sites: "sites"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name allows NULL")
		assert.Contains(t, err.Error(), "size_bytes is text, want integer")
		assert.NotContains(t, err.Error(), "missing columns")
	})
}

func TestMigrate_Idempotent(t *testing.T) {
	ctx := context.Background()

	db, err := sqlite.Connect(ctx, ":memory:", sitehost.Tables{Sites: "sites"})
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.NoError(t, db.Migrate(ctx))
	assert.NoError(t, db.Migrate(ctx), "migrate should be idempotent")
}

func TestDropTables(t *testing.T) {
	ctx := context.Background()

	raw, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	raw.SetMaxOpenConns(1)
	defer func() { _ = raw.Close() }()

	tables := sitehost.Tables{Sites: "sites_drop"}
	require.NoError(t, sqlite.Migrate(ctx, raw, tables))
	require.NoError(t, sqlite.DropTables(ctx, raw, tables))

	err = sqlite.ValidateSchema(ctx, raw, tables)
	assert.Error(t, err)
}
