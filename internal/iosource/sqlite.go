package iosource

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/gnames/gnpull/pkg/schema"
	_ "modernc.org/sqlite"
)

type sqliteQuerier struct {
	db *sql.DB
}

// OpenSQLite creates a Source that reads a SQLite snapshot of the remote
// database.
func OpenSQLite(
	path string,
	cat *schema.Catalog,
	opts ...Option,
) (*Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, OpenError(path, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, OpenError(path, err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, OpenError(path, err)
	}
	return newSource(sqliteQuerier{db: db}, cat, opts...), nil
}

func (s sqliteQuerier) rows(
	ctx context.Context,
	q query,
) ([]map[string]any, error) {
	var sb strings.Builder
	var args []any
	fmt.Fprintf(&sb, "SELECT * FROM %s", quote(q.table))
	for i, c := range q.where {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		marks := strings.TrimSuffix(strings.Repeat("?, ", len(c.values)), ", ")
		fmt.Fprintf(&sb, "%s IN (%s)", quote(c.column), marks)
		args = append(args, c.values...)
	}
	if q.order != "" {
		sb.WriteString(" ORDER BY " + q.order)
	}
	if q.limit > 0 {
		sb.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, q.limit, q.offset)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMaps(rows)
}

func scanMaps(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var res []map[string]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err = rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			row[col] = vals[i]
		}
		res = append(res, row)
	}
	return res, rows.Err()
}

func (s sqliteQuerier) tables(
	ctx context.Context,
) (map[string][]string, error) {
	q := `SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`
	tables, err := s.strings(ctx, q)
	if err != nil {
		return nil, err
	}

	res := make(map[string][]string, len(tables))
	for _, t := range tables {
		q := fmt.Sprintf("SELECT name FROM pragma_table_info(%s)", quoteString(t))
		cols, err := s.strings(ctx, q)
		if err != nil {
			return nil, err
		}
		res[t] = cols
	}
	return res, nil
}

func (s sqliteQuerier) strings(ctx context.Context, q string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []string
	for rows.Next() {
		var v string
		if err = rows.Scan(&v); err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, rows.Err()
}

func (s sqliteQuerier) close() error {
	return s.db.Close()
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
