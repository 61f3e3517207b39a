package value

import "fmt"

// Column is one typed column of a Table.
type Column struct {
	Name   string
	Type   Kind // dominant type of Values, or MixedKind
	Values []Value
	// Histogram counts occurrences of each Kind seen while inferring Type;
	// only populated when Type == MixedKind — the heterogeneous-column
	// warning carries the minority percentage, which needs this to compute
	// it without re-scanning Values.
	Histogram map[Kind]int
}

// Table is the reference-shared tabular value. Like Array
// and Object, a Value wraps a pointer to this struct; "derived table"
// builtins hand back a fresh *Table with its own column value slices.
type Table struct {
	Headers  []string
	Columns  []*Column
	RowCount int
}

type TableValue struct {
	Ref *Table
}

func (TableValue) Kind() Kind { return TableKind }

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Row returns row i as a freshly-allocated Array, field order following
// t.Headers.
func (t *Table) Row(i int) Array {
	items := make([]Value, len(t.Columns))
	for ci, c := range t.Columns {
		items[ci] = c.Values[i]
	}
	return NewArray(items...)
}

// RowAsObject returns row i as an Object keyed by header name, used by
// for-loops iterating a table row by row.
func (t *Table) RowAsObject(i int) Object {
	obj := NewObject()
	for _, c := range t.Columns {
		obj.Set(c.Name, c.Values[i])
	}
	return obj
}

// Validate checks the table's structural invariants: every column has
// length RowCount, and Headers[i] == Columns[i].Name.
func (t *Table) Validate() error {
	if len(t.Headers) != len(t.Columns) {
		return fmt.Errorf("table: %d headers but %d columns", len(t.Headers), len(t.Columns))
	}
	for i, c := range t.Columns {
		if t.Headers[i] != c.Name {
			return fmt.Errorf("table: header[%d]=%q does not match column name %q", i, t.Headers[i], c.Name)
		}
		if len(c.Values) != t.RowCount {
			return fmt.Errorf("table: column %q has %d values, want %d", c.Name, len(c.Values), t.RowCount)
		}
	}
	return nil
}

// Clone returns a Table whose Columns/Headers slices and Column.Values
// slices are independent of the receiver (a shallow copy of the Value
// elements themselves, which is sufficient since Value variants besides
// Array/Object/Table are immutable). table_union builds its result through
// Clone + append so the source table is never observably altered; the
// other derived operations build fresh columns directly.
func (t *Table) Clone() *Table {
	cols := make([]*Column, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = &Column{
			Name:   c.Name,
			Type:   c.Type,
			Values: append([]Value(nil), c.Values...),
		}
	}
	return &Table{
		Headers:  append([]string(nil), t.Headers...),
		Columns:  cols,
		RowCount: t.RowCount,
	}
}
