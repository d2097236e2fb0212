// Package store is the persistence path of the record sink. The store itself
// is opaque: an insert/query interface over named tables of string fields,
// with created_at assigned by the backend. Two backends exist: a
// PostgREST-style HTTP store and a local SQLite file.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperifyio/paperdigest/internal/digest"
)

// DefaultTable holds one row per digested paper.
const DefaultTable = "papers"

// Row is a stored record as returned by the backend.
type Row map[string]any

// Store is the opaque record store. The pipeline only inserts and reads back;
// it never updates or deletes.
type Store interface {
	// Insert adds one record and returns the stored row, including
	// backend-assigned columns such as created_at.
	Insert(ctx context.Context, table string, fields map[string]string) (Row, error)
	// QueryAll returns every row of the table, newest first.
	QueryAll(ctx context.Context, table string) ([]Row, error)
	Close() error
}

// PersistenceError reports a failed insert or query against the record store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("store %s: %v", e.Op, e.Err) }
func (e *PersistenceError) Unwrap() error { return e.Err }

// Persist flattens a validated summary into scalar fields and submits it as a
// single insert with the source locator under "url". Lists are rendered as
// bulleted text, one "- item" line per element, preserving order.
func Persist(ctx context.Context, s digest.Summary, locator string, st Store, table string) (Row, error) {
	if table == "" {
		table = DefaultTable
	}
	fields := Flatten(s)
	fields["url"] = locator

	row, err := st.Insert(ctx, table, fields)
	if err != nil {
		return nil, err
	}
	if len(row) == 0 {
		return nil, &PersistenceError{Op: "insert", Err: fmt.Errorf("no row returned")}
	}
	return row, nil
}

// Flatten converts a summary into string-only fields, serializing each list
// field as bulleted lines.
func Flatten(s digest.Summary) map[string]string {
	fields := make(map[string]string, len(s.Variant.Fields))
	for _, f := range s.Variant.Fields {
		if f.List {
			fields[f.Key] = FlattenList(s.List[f.Key])
			continue
		}
		fields[f.Key] = s.Scalar[f.Key]
	}
	return fields
}

// FlattenList joins list items into bulleted text: "- a\n- b".
func FlattenList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(item)
	}
	return b.String()
}
