// Package postgres implements the site registry using PostgreSQL
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/sitehost"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

const siteColumns = `id, name, slug, size_bytes, status, created_at`

type repo struct {
	pool      *pgxpool.Pool
	tableName string
}

func pgxIdentifier(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func scanSite(row pgx.Row) (sitehost.Site, error) {
	var s sitehost.Site
	var status string

	if err := row.Scan(&s.ID, &s.Name, &s.Slug, &s.SizeBytes, &status, &s.CreatedAt); err != nil {
		return sitehost.Site{}, err
	}

	parsed, err := sitehost.ParseSiteStatus(status)
	if err != nil {
		return sitehost.Site{}, err
	}
	s.Status = parsed

	return s, nil
}

func (r *repo) Get(ctx context.Context, slug string) (sitehost.Site, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE slug = $1`, siteColumns, r.tableName)

	s, err := scanSite(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sitehost.Site{}, sitehost.ErrNotFound
		}
		return sitehost.Site{}, fmt.Errorf("get: %w", err)
	}

	return s, nil
}

func (r *repo) GetActive(ctx context.Context, slug string) (sitehost.Site, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE slug = $1 AND status = $2`, siteColumns, r.tableName)

	s, err := scanSite(r.pool.QueryRow(ctx, query, slug, string(sitehost.StatusActive)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sitehost.Site{}, sitehost.ErrNotFound
		}
		return sitehost.Site{}, fmt.Errorf("get active: %w", err)
	}

	return s, nil
}

func (r *repo) Insert(ctx context.Context, site sitehost.NewSite) (sitehost.Site, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, slug, size_bytes, status)
		VALUES ($1, $2, $3, $4)
		RETURNING %s
	`, r.tableName, siteColumns)

	s, err := scanSite(r.pool.QueryRow(ctx, query,
		site.Name, site.Slug, site.SizeBytes, string(sitehost.StatusActive),
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sitehost.Site{}, fmt.Errorf("insert: slug %s: %w", site.Slug, sitehost.ErrConflict)
		}
		return sitehost.Site{}, fmt.Errorf("insert: %w", err)
	}

	return s, nil
}

func (r *repo) SetStatus(ctx context.Context, slug string, status sitehost.SiteStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("set status: invalid status %q: %w", status, sitehost.ErrInvalidInput)
	}

	query := fmt.Sprintf(`UPDATE %s SET status = $1 WHERE slug = $2`, r.tableName)

	tag, err := r.pool.Exec(ctx, query, string(status), slug)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set status: %w", sitehost.ErrNotFound)
	}

	return nil
}

func (r *repo) ListAll(ctx context.Context) ([]sitehost.Site, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at DESC, slug ASC`, siteColumns, r.tableName)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list all: %w", err)
	}
	defer rows.Close()

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
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE status = $1`, r.tableName)

	var count int64
	if err := r.pool.QueryRow(ctx, query, string(sitehost.StatusActive)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active: %w", err)
	}

	return count, nil
}

func (r *repo) SumActiveBytes(ctx context.Context) (int64, error) {
	query := fmt.Sprintf(`SELECT COALESCE(SUM(size_bytes), 0)::BIGINT FROM %s WHERE status = $1`, r.tableName)

	var total int64
	if err := r.pool.QueryRow(ctx, query, string(sitehost.StatusActive)).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum active bytes: %w", err)
	}

	return total, nil
}
