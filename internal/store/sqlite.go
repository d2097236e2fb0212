package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps records in a local SQLite file. Tables are created on
// first insert with one TEXT column per field plus an id and a
// store-assigned created_at.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database file at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, &PersistenceError{Op: "open", Err: err}
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

var identRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// validIdent guards table and column names interpolated into SQL; values
// always go through placeholders.
func validIdent(name string) error {
	if !identRe.MatchString(name) {
		return fmt.Errorf("invalid identifier %q", name)
	}
	return nil
}

func (s *SQLiteStore) ensureTable(ctx context.Context, table string, cols []string) error {
	defs := make([]string, 0, len(cols)+2)
	defs = append(defs,
		"id INTEGER PRIMARY KEY AUTOINCREMENT",
		"created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))",
	)
	for _, c := range cols {
		defs = append(defs, c+" TEXT")
	}
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(defs, ", "))
	_, err := s.db.ExecContext(ctx, stmt)
	return err
}

func (s *SQLiteStore) Insert(ctx context.Context, table string, fields map[string]string) (Row, error) {
	if err := validIdent(table); err != nil {
		return nil, &PersistenceError{Op: "insert", Err: err}
	}
	cols := make([]string, 0, len(fields))
	for c := range fields {
		if err := validIdent(c); err != nil {
			return nil, &PersistenceError{Op: "insert", Err: err}
		}
		cols = append(cols, c)
	}
	sort.Strings(cols)

	if err := s.ensureTable(ctx, table, cols); err != nil {
		return nil, &PersistenceError{Op: "insert", Err: err}
	}

	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		placeholders[i] = "?"
		args[i] = fields[c]
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return nil, &PersistenceError{Op: "insert", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, &PersistenceError{Op: "insert", Err: err}
	}

	rows, err := s.queryRows(ctx, fmt.Sprintf("SELECT * FROM %s WHERE id = ?", table), id)
	if err != nil {
		return nil, &PersistenceError{Op: "insert", Err: err}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (s *SQLiteStore) QueryAll(ctx context.Context, table string) ([]Row, error) {
	if err := validIdent(table); err != nil {
		return nil, &PersistenceError{Op: "query", Err: err}
	}
	rows, err := s.queryRows(ctx, fmt.Sprintf("SELECT * FROM %s ORDER BY created_at DESC, id DESC", table))
	if err != nil {
		return nil, &PersistenceError{Op: "query", Err: err}
	}
	return rows, nil
}

func (s *SQLiteStore) queryRows(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			switch v := vals[i].(type) {
			case []byte:
				row[c] = string(v)
			default:
				row[c] = v
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
