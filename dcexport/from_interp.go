package dcexport

import (
	"strings"

	"github.com/datacode-lang/datacode/builtins"
	"github.com/datacode-lang/datacode/value"
)

// Globals is the slice of an interpreter's bindings this package needs;
// interp.Interpreter satisfies it without dcexport importing interp
// directly (keeping the dependency one-way: cli wires both together).
type Globals interface {
	GetGlobal(name string) (value.Value, bool)
	Globals() []string
	Relations() []builtins.Relation
}

// FromInterpreter builds the tables/variables/relations triple --build_model
// passes to Export: one dcexport.Table per global Table value, a
// _datacode_variables row per global, and every relate()-recorded
// relation plus auto-detected `*_id` foreign keys.
func FromInterpreter(in Globals) ([]Table, []Variable, []Relation) {
	names := in.Globals()
	var tables []Table
	var vars []Variable
	tableNames := map[string]bool{}

	for _, name := range names {
		v, ok := in.GetGlobal(name)
		if !ok {
			continue
		}
		t, isTable := v.(value.TableValue)
		if !isTable {
			vars = append(vars, Variable{
				Name:  name,
				Type:  value.TypeName(v),
				Value: value.Str(v),
			})
			continue
		}
		tableNames[name] = true
		tables = append(tables, tableFrom(name, t.Ref))
		vars = append(vars, Variable{
			Name:        name,
			Type:        "table",
			TableName:   name,
			RowCount:    t.Ref.RowCount,
			ColumnCount: len(t.Ref.Columns),
		})
	}

	relations := explicitRelations(in.Relations())
	relations = append(relations, inferredRelations(tables, tableNames)...)
	return tables, vars, relations
}

func tableFrom(name string, t *value.Table) Table {
	cols := make([]Column, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = Column{Name: c.Name, Type: sqlType(c.Type)}
	}
	rows := make([][]interface{}, t.RowCount)
	for ri := 0; ri < t.RowCount; ri++ {
		row := make([]interface{}, len(t.Columns))
		for ci, c := range t.Columns {
			row[ci] = sqlValue(c.Values[ri])
		}
		rows[ri] = row
	}
	return Table{Name: name, Columns: cols, Rows: rows}
}

// sqlType maps a DataCode value kind to its exported SQLite column type.
func sqlType(k value.Kind) SQLType {
	switch k {
	case value.IntKind, value.BoolKind:
		return SQLInteger
	case value.RealKind, value.CurrencyKind:
		return SQLReal
	default:
		return SQLText
	}
}

func sqlValue(v value.Value) interface{} {
	switch x := v.(type) {
	case value.Null:
		return nil
	case value.Bool:
		if x {
			return int64(1)
		}
		return int64(0)
	case value.Int:
		return int64(x)
	case value.Real:
		return float64(x)
	case value.Currency:
		f, _ := x.Amount.Float64()
		return f
	case value.Date:
		return x.Date.String()
	default:
		return value.Str(v)
	}
}

func explicitRelations(rels []builtins.Relation) []Relation {
	out := make([]Relation, len(rels))
	for i, r := range rels {
		relType := r.Kind
		if relType == "" {
			relType = "explicit"
		}
		out[i] = Relation{
			FromTable: r.FromTable, FromColumn: r.FromColumn,
			ToTable: r.ToTable, ToColumn: r.ToColumn,
			RelationType: relType,
		}
	}
	return out
}

// inferredRelations auto-detects `*_id` foreign keys: a column named
// "<x>_id" in table A, where a table named exactly "<x>" or "<x>s"
// exists with an "id" column, is
// treated as a foreign key to that table.
func inferredRelations(tables []Table, tableNames map[string]bool) []Relation {
	byName := map[string]Table{}
	for _, t := range tables {
		byName[t.Name] = t
	}
	var out []Relation
	for _, t := range tables {
		for _, c := range t.Columns {
			if !strings.HasSuffix(c.Name, "_id") || c.Name == "id" {
				continue
			}
			base := strings.TrimSuffix(c.Name, "_id")
			for _, candidate := range []string{base, base + "s"} {
				target, ok := byName[candidate]
				if !ok || target.Name == t.Name {
					continue
				}
				if hasColumn(target, "id") {
					out = append(out, Relation{
						FromTable: t.Name, FromColumn: c.Name,
						ToTable: target.Name, ToColumn: "id",
						RelationType: "inferred",
					})
					break
				}
			}
		}
	}
	return out
}

func hasColumn(t Table, name string) bool {
	for _, c := range t.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}
