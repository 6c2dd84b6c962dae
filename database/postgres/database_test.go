package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/sitehost"
	"github.com/sagarc03/sitehost/database/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	pool := getSharedTestDatabase(t)
	dsn := getDSN(pool)
	ctx := context.Background()

	tables := sitehost.Tables{Sites: "sites"}
	db, err := postgres.Connect(ctx, dsn, tables)
	assert.NoError(t, err)
	assert.NotNil(t, db)
	defer func() { _ = db.Close() }()

	err = db.Ping(ctx)
	assert.NoError(t, err, "ping should succeed after connect")
}

func TestDatabase_Validate(t *testing.T) {
	pool := getSharedTestDatabase(t)
	dsn := getDSN(pool)
	ctx := context.Background()

	t.Run("success - valid schema after migrate", func(t *testing.T) {
		tableName := "validate_test_" + getRandomString(t)
		tables := sitehost.Tables{Sites: tableName}
		db, err := postgres.Connect(ctx, dsn, tables)
		assert.NoError(t, err)
		defer func() {
			_ = db.Close()
			_ = dropTable(ctx, pool, tableName)
		}()

		err = db.Migrate(ctx)
		assert.NoError(t, err)

		err = db.Validate(ctx)
		assert.NoError(t, err, "validate should succeed after migrate")
	})

	t.Run("error - table does not exist", func(t *testing.T) {
		tables := sitehost.Tables{Sites: "nonexistent_table"}
		db, err := postgres.Connect(ctx, dsn, tables)
		assert.NoError(t, err)
		defer func() { _ = db.Close() }()

		err = db.Validate(ctx)
		assert.Error(t, err)
	})

	t.Run("error - missing columns", func(t *testing.T) {
		tableName := "incomplete_" + getRandomString(t)
		tables := sitehost.Tables{Sites: tableName}

		_, err := pool.Exec(ctx, `
			CREATE TABLE `+tableName+` (
				id UUID PRIMARY KEY,
				slug TEXT NOT NULL
			)
		`)
		assert.NoError(t, err)
		defer func() { _ = dropTable(ctx, pool, tableName) }()

		db, err := postgres.Connect(ctx, dsn, tables)
		assert.NoError(t, err)
		defer func() { _ = db.Close() }()

		err = db.Validate(ctx)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "missing columns")
	})

	t.Run("error - wrong column type", func(t *testing.T) {
		tableName := "wrongtype_" + getRandomString(t)
		tables := sitehost.Tables{Sites: tableName}

		_, err := pool.Exec(ctx, `
			CREATE TABLE `+tableName+` (
				id UUID PRIMARY KEY,
				name TEXT NOT NULL,
				slug TEXT NOT NULL UNIQUE,
				size_bytes TEXT NOT NULL,
				status TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)
		`)
		assert.NoError(t, err)
		defer func() { _ = dropTable(ctx, pool, tableName) }()

		db, err := postgres.Connect(ctx, dsn, tables)
		assert.NoError(t, err)
		defer func() { _ = db.Close() }()

		err = db.Validate(ctx)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "size_bytes")
	})
}

func TestDatabase_Close(t *testing.T) {
	pool := getSharedTestDatabase(t)
	dsn := getDSN(pool)
	ctx := context.Background()

	db, err := postgres.Connect(ctx, dsn, sitehost.Tables{Sites: "close_test"})
	assert.NoError(t, err)

	err = db.Close()
	assert.NoError(t, err, "close should succeed")

	err = db.Ping(ctx)
	assert.Error(t, err, "ping should fail after close")
}

// =============================================================================
// Repo Tests (via SiteRepo interface)
// =============================================================================

func TestRepo_Insert(t *testing.T) {
	ctx := context.Background()

	t.Run("creates active row", func(t *testing.T) {
		repo := setupTestRepo(t)

		site, err := repo.Insert(ctx, sitehost.NewSite{Name: "My Portfolio!", Slug: "my-portfolio", SizeBytes: 2048})
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, site.ID)
		assert.Equal(t, "My Portfolio!", site.Name)
		assert.Equal(t, "my-portfolio", site.Slug)
		assert.Equal(t, int64(2048), site.SizeBytes)
		assert.Equal(t, sitehost.StatusActive, site.Status)
		assert.WithinDuration(t, time.Now(), site.CreatedAt, time.Minute)
	})

	t.Run("conflict on active slug", func(t *testing.T) {
		repo := setupTestRepo(t)

		_, err := repo.Insert(ctx, sitehost.NewSite{Name: "a", Slug: "taken"})
		require.NoError(t, err)

		_, err = repo.Insert(ctx, sitehost.NewSite{Name: "b", Slug: "taken"})
		assert.ErrorIs(t, err, sitehost.ErrConflict)
	})

	t.Run("conflict on deleted slug", func(t *testing.T) {
		repo := setupTestRepo(t)

		_, err := repo.Insert(ctx, sitehost.NewSite{Name: "a", Slug: "taken"})
		require.NoError(t, err)
		require.NoError(t, repo.SetStatus(ctx, "taken", sitehost.StatusDeleted))

		_, err = repo.Insert(ctx, sitehost.NewSite{Name: "b", Slug: "taken"})
		assert.ErrorIs(t, err, sitehost.ErrConflict)
	})
}

func TestRepo_Get(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	inserted, err := repo.Insert(ctx, sitehost.NewSite{Name: "Blog", Slug: "blog", SizeBytes: 10})
	require.NoError(t, err)

	got, err := repo.Get(ctx, "blog")
	require.NoError(t, err)
	assert.Equal(t, inserted.ID, got.ID)
	assert.Equal(t, inserted.Slug, got.Slug)
	assert.True(t, inserted.CreatedAt.Equal(got.CreatedAt))

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, sitehost.ErrNotFound)
}

func TestRepo_GetActive(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	_, err := repo.Insert(ctx, sitehost.NewSite{Name: "Blog", Slug: "blog"})
	require.NoError(t, err)

	_, err = repo.GetActive(ctx, "blog")
	require.NoError(t, err)

	require.NoError(t, repo.SetStatus(ctx, "blog", sitehost.StatusDeleted))

	_, err = repo.GetActive(ctx, "blog")
	assert.ErrorIs(t, err, sitehost.ErrNotFound)

	got, err := repo.Get(ctx, "blog")
	require.NoError(t, err)
	assert.Equal(t, sitehost.StatusDeleted, got.Status)
}

func TestRepo_SetStatus(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	err := repo.SetStatus(ctx, "missing", sitehost.StatusDeleted)
	assert.ErrorIs(t, err, sitehost.ErrNotFound)

	err = repo.SetStatus(ctx, "missing", sitehost.SiteStatus("archived"))
	assert.ErrorIs(t, err, sitehost.ErrInvalidInput)
}

func TestRepo_ListAll(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	sites, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, sites)

	for _, slug := range []string{"first", "second", "third"} {
		_, err := repo.Insert(ctx, sitehost.NewSite{Name: slug, Slug: slug})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	sites, err = repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, sites, 3)
	assert.Equal(t, "third", sites[0].Slug)
	assert.Equal(t, "second", sites[1].Slug)
	assert.Equal(t, "first", sites[2].Slug)
}

func TestRepo_Aggregates(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	count, err := repo.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	total, err := repo.SumActiveBytes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	for _, s := range []sitehost.NewSite{
		{Name: "a", Slug: "a", SizeBytes: 100},
		{Name: "b", Slug: "b", SizeBytes: 250},
		{Name: "c", Slug: "c", SizeBytes: 4000},
	} {
		_, err := repo.Insert(ctx, s)
		require.NoError(t, err)
	}
	require.NoError(t, repo.SetStatus(ctx, "c", sitehost.StatusDeleted))

	count, err = repo.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	total, err = repo.SumActiveBytes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(350), total)
}
