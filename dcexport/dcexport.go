// Package dcexport implements the SQLite export layout for a running
// DataCode interpreter's global state: one table per global Table value,
// plus the `_datacode_variables` and `_datacode_relations` metadata
// tables.
//
// Its DB interface is vippsas/sqlcode's own database/sql abstraction over
// a live connection, which works unchanged for a SQLite handle opened by
// the caller — this package never opens the connection itself, the
// caller always supplies DB.
package dcexport

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// DB is the minimal database/sql surface this package needs, trimmed from
// vippsas/sqlcode's own DB interface so *sql.DB (opened against a SQLite
// file by the caller) satisfies it without a wrapper.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// Column describes one exported column and its mapped SQLite type.
type Column struct {
	Name string
	Type SQLType
}

type SQLType string

const (
	SQLInteger SQLType = "INTEGER"
	SQLReal    SQLType = "REAL"
	SQLText    SQLType = "TEXT"
)

// Table is the exporter's view of one DataCode Table: enough to emit
// CREATE TABLE + INSERT statements without depending on the value package
// (keeps dcexport usable against any row source, not just interp.Interpreter).
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]interface{}
}

// Variable is one row of `_datacode_variables`.
type Variable struct {
	Name        string
	Type        string
	TableName   string // "" unless Type == "table"
	RowCount    int
	ColumnCount int
	Description string
	Value       string // str()-rendered value for non-table globals
}

// Relation is one row of `_datacode_relations`, built from explicit
// relate() calls and auto-detected `*_id` foreign keys.
type Relation struct {
	FromTable, FromColumn string
	ToTable, ToColumn     string
	RelationType          string // "explicit" (relate()) or "inferred" (*_id)
}

// nowFn exists so tests can pin `created_at` without depending on wall
// clock time directly (Date/Math.random()-style nondeterminism is kept
// out of the exporter's own logic).
var nowFn = func() time.Time { return time.Now().UTC() }

// Export writes every table, the `_datacode_variables` metadata table,
// the `_datacode_relations` metadata table, and foreign-key indexes into
// db. Tables are created in dependency order so a foreign-key index on a
// column referencing a not-yet-created table never happens; see
// orderTables.
func Export(ctx context.Context, db DB, tables []Table, vars []Variable, relations []Relation) error {
	ordered, err := orderTables(tables, relations)
	if err != nil {
		return fmt.Errorf("dcexport: %w", err)
	}
	for _, t := range ordered {
		if err := createAndInsert(ctx, db, t); err != nil {
			return fmt.Errorf("dcexport: table %q: %w", t.Name, err)
		}
	}
	if err := createVariablesTable(ctx, db, vars); err != nil {
		return fmt.Errorf("dcexport: _datacode_variables: %w", err)
	}
	if err := createRelationsTable(ctx, db, relations); err != nil {
		return fmt.Errorf("dcexport: _datacode_relations: %w", err)
	}
	for _, rel := range relations {
		idx := fmt.Sprintf("idx_%s_%s", rel.FromTable, rel.FromColumn)
		stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s(%s)",
			quoteIdent(idx), quoteIdent(rel.FromTable), quoteIdent(rel.FromColumn))
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("dcexport: index %s: %w", idx, err)
		}
	}
	return nil
}

func createAndInsert(ctx context.Context, db DB, t Table) error {
	var cols []string
	for _, c := range t.Columns {
		cols = append(cols, fmt.Sprintf("%s %s", quoteIdent(c.Name), c.Type))
	}
	create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(t.Name), strings.Join(cols, ", "))
	if _, err := db.ExecContext(ctx, create); err != nil {
		return err
	}
	if len(t.Rows) == 0 {
		return nil
	}
	placeholders := make([]string, len(t.Columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	insert := fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(t.Name), strings.Join(placeholders, ", "))
	for _, row := range t.Rows {
		if _, err := db.ExecContext(ctx, insert, row...); err != nil {
			return err
		}
	}
	return nil
}

func createVariablesTable(ctx context.Context, db DB, vars []Variable) error {
	create := `CREATE TABLE IF NOT EXISTS _datacode_variables (
		variable_name TEXT PRIMARY KEY,
		variable_type TEXT,
		table_name TEXT,
		row_count INT,
		column_count INT,
		created_at TEXT,
		description TEXT,
		value TEXT
	)`
	if _, err := db.ExecContext(ctx, create); err != nil {
		return err
	}
	now := nowFn().Format(time.RFC3339)
	for _, v := range vars {
		_, err := db.ExecContext(ctx,
			`INSERT INTO _datacode_variables VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			v.Name, v.Type, v.TableName, v.RowCount, v.ColumnCount, now, v.Description, v.Value)
		if err != nil {
			return err
		}
	}
	return nil
}

func createRelationsTable(ctx context.Context, db DB, relations []Relation) error {
	create := `CREATE TABLE IF NOT EXISTS _datacode_relations (
		from_table TEXT,
		from_column TEXT,
		to_table TEXT,
		to_column TEXT,
		relation_type TEXT,
		created_at TEXT
	)`
	if _, err := db.ExecContext(ctx, create); err != nil {
		return err
	}
	now := nowFn().Format(time.RFC3339)
	for _, r := range relations {
		_, err := db.ExecContext(ctx,
			`INSERT INTO _datacode_relations VALUES (?, ?, ?, ?, ?, ?)`,
			r.FromTable, r.FromColumn, r.ToTable, r.ToColumn, r.RelationType, now)
		if err != nil {
			return err
		}
	}
	return nil
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
