// Package sqlite implements the site registry using SQLite
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/sitehost"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// timeLayout is fixed width so stored timestamps sort correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const siteColumns = `id, name, slug, size_bytes, status, created_at`

type repo struct {
	db        *sql.DB
	tableName string
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSite(row rowScanner) (sitehost.Site, error) {
	var s sitehost.Site
	var idStr, status, createdAt string

	if err := row.Scan(&idStr, &s.Name, &s.Slug, &s.SizeBytes, &status, &createdAt); err != nil {
		return sitehost.Site{}, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return sitehost.Site{}, fmt.Errorf("parse uuid: %w", err)
	}
	s.ID = id

	s.Status, err = sitehost.ParseSiteStatus(status)
	if err != nil {
		return sitehost.Site{}, err
	}

	s.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return sitehost.Site{}, fmt.Errorf("parse created_at: %w", err)
	}

	return s, nil
}

func (r *repo) Get(ctx context.Context, slug string) (sitehost.Site, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT %s FROM %s WHERE slug = ?`, siteColumns, r.tableName)

	s, err := scanSite(r.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sitehost.Site{}, sitehost.ErrNotFound
		}
		return sitehost.Site{}, fmt.Errorf("get: %w", err)
	}

	return s, nil
}

func (r *repo) GetActive(ctx context.Context, slug string) (sitehost.Site, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT %s FROM %s WHERE slug = ? AND status = ?`, siteColumns, r.tableName)

	s, err := scanSite(r.db.QueryRowContext(ctx, query, slug, string(sitehost.StatusActive)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sitehost.Site{}, sitehost.ErrNotFound
		}
		return sitehost.Site{}, fmt.Errorf("get active: %w", err)
	}

	return s, nil
}

func (r *repo) Insert(ctx context.Context, site sitehost.NewSite) (sitehost.Site, error) {
	now := time.Now().UTC()
	s := sitehost.Site{
		ID:        uuid.New(),
		Name:      site.Name,
		Slug:      site.Slug,
		SizeBytes: site.SizeBytes,
		Status:    sitehost.StatusActive,
		CreatedAt: now,
	}

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?)`, r.tableName, siteColumns)

	_, err := r.db.ExecContext(ctx, query,
		s.ID.String(), s.Name, s.Slug, s.SizeBytes, string(s.Status), now.Format(timeLayout),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sitehost.Site{}, fmt.Errorf("insert: slug %s: %w", site.Slug, sitehost.ErrConflict)
		}
		return sitehost.Site{}, fmt.Errorf("insert: %w", err)
	}

	// Round-trip through the stored format so callers see the persisted value.
	s.CreatedAt, _ = time.Parse(timeLayout, now.Format(timeLayout))

	return s, nil
}

func (r *repo) SetStatus(ctx context.Context, slug string, status sitehost.SiteStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("set status: invalid status %q: %w", status, sitehost.ErrInvalidInput)
	}

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`UPDATE %s SET status = ? WHERE slug = ?`, r.tableName)

	result, err := r.db.ExecContext(ctx, query, string(status), slug)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set status: rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("set status: %w", sitehost.ErrNotFound)
	}

	return nil
}

func (r *repo) ListAll(ctx context.Context) ([]sitehost.Site, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT %s FROM %s ORDER BY created_at DESC, slug ASC`, siteColumns, r.tableName)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list all: %w", err)
	}
	defer func() { _ = rows.Close() }()

	sites := []sitehost.Site{}
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			return nil, fmt.Errorf("list all: scan: %w", err)
		}
		sites = append(sites, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list all: rows: %w", err)
	}

	return sites, nil
}

func (r *repo) CountActive(ctx context.Context) (int64, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT COUNT(*) FROM %s WHERE status = ?`, r.tableName)

	var count int64
	if err := r.db.QueryRowContext(ctx, query, string(sitehost.StatusActive)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active: %w", err)
	}

	return count, nil
}

func (r *repo) SumActiveBytes(ctx context.Context) (int64, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT COALESCE(SUM(size_bytes), 0) FROM %s WHERE status = ?`, r.tableName)

	var total int64
	if err := r.db.QueryRowContext(ctx, query, string(sitehost.StatusActive)).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum active bytes: %w", err)
	}

	return total, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	default:
		return false
	}
}
