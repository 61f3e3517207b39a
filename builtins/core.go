package builtins

import (
	"fmt"
	"strings"

	"github.com/datacode-lang/datacode/value"
)

// GlobalBinding is a (name, value) pair as seen by builtins that need to
// scan every global — relate() matches column identity this way since an
// Array produced by indexing a Table carries no back-pointer to its
// source.
type GlobalBinding struct {
	Name  string
	Value value.Value
}

// Relation is one explicit table link recorded by relate(), consumed by
// the SQLite exporter (which detects `*_id` links on its own).
type Relation struct {
	FromTable, FromColumn string
	ToTable, ToColumn     string
	Kind                  string // "explicit"; relate() is the only producer
}

func registerCore(r *Registry, svc Services) {
	r.add("print", "system", 0, -1, func(ctx *Context, args []value.Value) (value.Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = value.Str(a)
		}
		if svc.Print != nil {
			svc.Print(strings.Join(parts, " "))
		}
		return value.Null{}, nil
	})

	r.add("typeof", "system", 1, 1, func(ctx *Context, args []value.Value) (value.Value, error) {
		return value.String(value.TypeName(args[0])), nil
	})

	r.add("isinstance", "system", 2, 2, func(ctx *Context, args []value.Value) (value.Value, error) {
		name, ok := args[1].(value.String)
		if !ok {
			return nil, fmt.Errorf("second argument must be a type name string")
		}
		return value.Bool(value.TypeName(args[0]) == string(name)), nil
	})

	r.add("isset", "system", 1, 1, func(ctx *Context, args []value.Value) (value.Value, error) {
		_, isNull := args[0].(value.Null)
		return value.Bool(!isNull), nil
	})

	r.add("getcwd", "system", 0, 0, func(ctx *Context, args []value.Value) (value.Value, error) {
		return value.String(svc.WorkDir), nil
	})

	if svc.RecordRelation != nil {
		r.add("relate", "system", 2, 2, func(ctx *Context, args []value.Value) (value.Value, error) {
			fromArr, ok1 := args[0].(value.Array)
			toArr, ok2 := args[1].(value.Array)
			if !ok1 || !ok2 {
				return nil, fmt.Errorf("relate() expects two table columns")
			}
			fromTable, fromCol, ok1 := svc.FindColumn(fromArr)
			toTable, toCol, ok2 := svc.FindColumn(toArr)
			if !ok1 || !ok2 {
				return nil, fmt.Errorf("relate() arguments must be columns of Table values held in globals")
			}
			svc.RecordRelation(Relation{FromTable: fromTable, FromColumn: fromCol, ToTable: toTable, ToColumn: toCol, Kind: "explicit"})
			return value.Null{}, nil
		})
	}
}
