package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/sitehost"
)

// siteColumnTypes maps each column of the sites table to its information_schema
// data type. Every column is NOT NULL.
var siteColumnTypes = map[string]string{
	"id":         "uuid",
	"name":       "text",
	"slug":       "text",
	"size_bytes": "bigint",
	"status":     "text",
	"created_at": "timestamp with time zone",
}

type column struct {
	dataType string
	nullable bool
}

// ValidateSchema checks that the sites table exists and carries every column
// the repo reads, with the expected type and NOT NULL.
func ValidateSchema(ctx context.Context, pool *pgxpool.Pool, tables sitehost.Tables) error {
	tableName := tables.Sites
	if !sitehost.IsValidTableName(tableName) {
		return fmt.Errorf("validate schema: invalid table name: %s", tableName)
	}

	exists, err := tableExists(ctx, pool, tableName)
	if err != nil {
		return fmt.Errorf("validate schema %s: %w", tableName, err)
	}
	if !exists {
		return fmt.Errorf("validate schema: table %s does not exist", tableName)
	}

	actual, err := readColumns(ctx, pool, tableName)
	if err != nil {
		return fmt.Errorf("validate schema %s: %w", tableName, err)
	}

	var missing, mismatched []string
	for name, wantType := range siteColumnTypes {
		col, ok := actual[name]
		switch {
		case !ok:
			missing = append(missing, name)
		case col.dataType != wantType:
			mismatched = append(mismatched, fmt.Sprintf("%s: expected %s, got %s", name, wantType, col.dataType))
		case col.nullable:
			mismatched = append(mismatched, name+": must be NOT NULL")
		}
	}

	if len(missing) == 0 && len(mismatched) == 0 {
		return nil
	}

	slices.Sort(missing)
	slices.Sort(mismatched)

	var msg strings.Builder
	fmt.Fprintf(&msg, "validate schema: table %s", tableName)
	if len(missing) > 0 {
		fmt.Fprintf(&msg, "; missing columns: %s", strings.Join(missing, ", "))
	}
	if len(mismatched) > 0 {
		fmt.Fprintf(&msg, "; mismatched columns: %s", strings.Join(mismatched, "; "))
	}
	return errors.New(msg.String())
}

func readColumns(ctx context.Context, pool *pgxpool.Pool, tableName string) (map[string]column, error) {
	rows, err := pool.Query(ctx, `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
	`, tableName)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	columns := make(map[string]column)
	for rows.Next() {
		var name, dataType, nullable string
		if err := rows.Scan(&name, &dataType, &nullable); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		columns[name] = column{dataType: strings.ToLower(dataType), nullable: nullable == "YES"}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	return columns, nil
}

func tableExists(ctx context.Context, pool *pgxpool.Pool, tableName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)
	`, tableName).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check table exists: %w", err)
	}
	return exists, nil
}
