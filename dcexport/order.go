package dcexport

import (
	"errors"
	"fmt"
)

// CycleErr is returned by orderTables when relations form a dependency
// cycle; adapted from sqlparser/sqldocument/topological_sort.go's
// CycleError, which solves the identical "order CREATE statements so a
// dependency is always created before its dependent" problem for SQL DDL.
var CycleErr = errors.New("dcexport: relation graph has a dependency cycle")

// notFoundErr mirrors topological_sort.go's NotFoundError: a relation
// names a to_table that isn't among the tables being exported.
type notFoundErr struct{ name string }

func (e notFoundErr) Error() string { return fmt.Sprintf("dcexport: relation references unknown table %q", e.name) }

// orderTables performs the same visiting/visited depth-first topological
// sort as sqldocument.TopologicalSort, but over DataCode Tables and
// relate()/auto-detected relations instead of SQL CREATE statements and
// their DependsOn lists: a table referenced by a foreign-key relation must
// be created (and populated, so the index can be built) before the table
// that references it.
func orderTables(tables []Table, relations []Relation) ([]Table, error) {
	indexByName := make(map[string]int, len(tables))
	for i, t := range tables {
		indexByName[t.Name] = i
	}
	dependsOn := make([][]string, len(tables))
	for _, r := range relations {
		fromIdx, ok := indexByName[r.FromTable]
		if !ok {
			continue // relation on a table not in this export batch
		}
		if _, ok := indexByName[r.ToTable]; !ok {
			continue
		}
		dependsOn[fromIdx] = append(dependsOn[fromIdx], r.ToTable)
	}

	visiting := make([]bool, len(tables))
	visited := make([]bool, len(tables))
	var output []Table

	var visit func(i int) error
	visit = func(i int) error {
		if visited[i] {
			return nil
		}
		if visiting[i] {
			return CycleErr
		}
		visiting[i] = true
		for _, dep := range dependsOn[i] {
			depIdx, ok := indexByName[dep]
			if !ok {
				return notFoundErr{name: dep}
			}
			if err := visit(depIdx); err != nil {
				return err
			}
		}
		visiting[i] = false
		visited[i] = true
		output = append(output, tables[i])
		return nil
	}

	for i := range tables {
		if err := visit(i); err != nil {
			return nil, err
		}
	}
	return output, nil
}
