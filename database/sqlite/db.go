package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sagarc03/sitehost"
)

// siteColumnTypes maps each column of the sites table to its declared SQLite
// type. Every column is NOT NULL.
var siteColumnTypes = map[string]string{
	"id":         "text",
	"name":       "text",
	"slug":       "text",
	"size_bytes": "integer",
	"status":     "text",
	"created_at": "text",
}

type column struct {
	dataType string
	notNull  bool
}

// ValidateSchema checks that the sites table exists and carries every column
// the repo reads, with the declared type and NOT NULL.
func ValidateSchema(ctx context.Context, db *sql.DB, tables sitehost.Tables) error {
	tableName := tables.Sites
	if !sitehost.IsValidTableName(tableName) {
		return fmt.Errorf("validate schema: invalid table name: %s", tableName)
	}

	exists, err := tableExists(ctx, db, tableName)
	if err != nil {
		return fmt.Errorf("validate schema %s: %w", tableName, err)
	}
	if !exists {
		return fmt.Errorf("validate schema: table %s does not exist", tableName)
	}

	actual, err := readColumns(ctx, db, tableName)
	if err != nil {
		return fmt.Errorf("validate schema %s: %w", tableName, err)
	}

	var problems []string
	var missing []string
	for name, wantType := range siteColumnTypes {
		col, ok := actual[name]
		switch {
		case !ok:
			missing = append(missing, name)
		case col.dataType != wantType:
			problems = append(problems, fmt.Sprintf("%s is %s, want %s", name, col.dataType, wantType))
		case !col.notNull:
			problems = append(problems, name+" allows NULL")
		}
	}

	if len(missing) > 0 {
		slices.Sort(missing)
		problems = append([]string{"missing columns: " + strings.Join(missing, ", ")}, problems...)
	}
	if len(problems) > 0 {
		return fmt.Errorf("validate schema: table %s: %s", tableName, strings.Join(problems, "; "))
	}

	return nil
}

// readColumns uses PRAGMA table_info, which reports declared types verbatim.
func readColumns(ctx context.Context, db *sql.DB, tableName string) (map[string]column, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, quoteIdentifier(tableName)))
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns := make(map[string]column)
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, dataType   string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &dataType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		columns[name] = column{dataType: strings.ToLower(dataType), notNull: notNull == 1}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	return columns, nil
}

func tableExists(ctx context.Context, db *sql.DB, tableName string) (bool, error) {
	var name string
	err := db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, tableName).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check table exists: %w", err)
	}
	return true, nil
}
