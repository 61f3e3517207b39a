package builtins

import (
	"math/rand"
	"testing"

	"github.com/kylelemons/godebug/pretty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datacode-lang/datacode/iofs"
	"github.com/datacode-lang/datacode/value"
)

func newTestRegistry() *Registry {
	return NewRegistry(Services{
		Print: func(string) {},
		Warn:  func(string) {},
	})
}

func newTestRegistryWithFS(fsys *iofs.VirtualFS) (*Registry, *[]string) {
	var warnings []string
	r := NewRegistry(Services{
		Print: func(string) {},
		Warn:  func(s string) { warnings = append(warnings, s) },
		FS:    fsys,
		Rand:  rand.New(rand.NewSource(1)),
	})
	return r, &warnings
}

func call(t *testing.T, r *Registry, name string, args ...value.Value) value.Value {
	t.Helper()
	info, ok := r.Lookup(name)
	require.True(t, ok, "builtin %q not registered", name)
	require.NoError(t, info.CheckArity(len(args)))
	v, err := info.Fn(&Context{Line: 1}, args)
	require.NoError(t, err)
	return v
}

func TestSortIsStableAndIdempotent(t *testing.T) {
	r := newTestRegistry()
	a := value.NewArray(value.Int(3), value.Int(1), value.Int(2))
	sorted := call(t, r, "sort", a)
	assert.Equal(t, "[1, 2, 3]", value.Str(sorted))
	sortedAgain := call(t, r, "sort", sorted)
	assert.Equal(t, value.Str(sorted), value.Str(sortedAgain))
}

func TestReverseIsInvolution(t *testing.T) {
	r := newTestRegistry()
	a := value.NewArray(value.Int(1), value.Int(2), value.Int(3))
	once := call(t, r, "reverse", a)
	twice := call(t, r, "reverse", once)
	assert.Equal(t, value.Str(a), value.Str(twice))
}

func TestUniqueIsIdempotent(t *testing.T) {
	r := newTestRegistry()
	a := value.NewArray(value.Int(1), value.Int(1), value.Int(2))
	once := call(t, r, "unique", a)
	twice := call(t, r, "unique", once)
	assert.Equal(t, value.Str(once), value.Str(twice))
}

func TestTableConstructionInfersColumnTypes(t *testing.T) {
	r := newTestRegistry()
	rows := value.NewArray(
		value.NewArray(value.Int(1), value.String("a")),
		value.NewArray(value.Int(2), value.String("b")),
	)
	headers := value.NewArray(value.String("id"), value.String("name"))
	tv := call(t, r, "table", rows, headers)
	table, ok := tv.(value.TableValue)
	require.True(t, ok)
	assert.Equal(t, 2, table.Ref.RowCount)
	idCol, ok := table.Ref.Column("id")
	require.True(t, ok)
	assert.Equal(t, value.IntKind, idCol.Type)
}

func TestTableConstructionWarnsOnHeterogeneousColumn(t *testing.T) {
	var warnings []string
	r := NewRegistry(Services{Warn: func(s string) { warnings = append(warnings, s) }})
	rows := value.NewArray(
		value.NewArray(value.Int(1)),
		value.NewArray(value.String("x")),
		value.NewArray(value.Bool(true)),
	)
	call(t, r, "table", rows)
	assert.NotEmpty(t, warnings)
}

func TestRangeHalfOpenWithNegativeStep(t *testing.T) {
	r := newTestRegistry()
	descending := call(t, r, "range", value.Int(5), value.Int(0), value.Int(-1))
	assert.Equal(t, "[5, 4, 3, 2, 1]", value.Str(descending))
}

func TestEnumProducesIndexValuePairs(t *testing.T) {
	r := newTestRegistry()
	a := value.NewArray(value.String("a"), value.String("b"))
	pairs := call(t, r, "enum", a)
	assert.Equal(t, "[[0, 'a'], [1, 'b']]", value.Str(pairs))
}

// TestTableSelectProjectsColumnsWithoutMutatingSource uses godebug/pretty
// to diff the projected headers, so a wrong-column-order regression in
// table_select shows up as a readable diff, and checks that the source
// table still has all three of its columns.
func TestTableSelectProjectsColumnsWithoutMutatingSource(t *testing.T) {
	r := newTestRegistry()
	src := call(t, r, "table",
		value.NewArray(value.NewArray(value.Int(1), value.String("a"), value.Real(1.5))),
		value.NewArray(value.String("id"), value.String("name"), value.String("score")))
	projected := call(t, r, "table_select", src, value.NewArray(value.String("score"), value.String("id")))

	srcTable := src.(value.TableValue).Ref
	gotTable := projected.(value.TableValue).Ref

	wantHeaders := []string{"score", "id"}
	if diff := pretty.Compare(wantHeaders, gotTable.Headers); diff != "" {
		t.Fatalf("table_select() headers mismatch (-want +got):\n%s", diff)
	}
	if len(srcTable.Columns) != 3 {
		t.Fatalf("table_select() must not mutate its source table, got %d source columns", len(srcTable.Columns))
	}
}

func TestTableJoinInnerProducesCartesianMatches(t *testing.T) {
	r := newTestRegistry()
	left := call(t, r, "table",
		value.NewArray(value.NewArray(value.Int(1), value.String("a")), value.NewArray(value.Int(2), value.String("b"))),
		value.NewArray(value.String("id"), value.String("name")))
	right := call(t, r, "table",
		value.NewArray(value.NewArray(value.Int(1), value.String("x"))),
		value.NewArray(value.String("id"), value.String("tag")))
	joined := call(t, r, "table_join_inner", left, right, value.String("id"))
	table := joined.(value.TableValue)
	assert.Equal(t, 1, table.Ref.RowCount)
}

func TestMergeTablesFillsInUnmatchedRowsWithNull(t *testing.T) {
	r := newTestRegistry()
	left := call(t, r, "table",
		value.NewArray(value.NewArray(value.Int(1), value.String("a")), value.NewArray(value.Int(2), value.String("b"))),
		value.NewArray(value.String("id"), value.String("name")))
	right := call(t, r, "table",
		value.NewArray(value.NewArray(value.Int(1), value.String("red")), value.NewArray(value.Int(3), value.String("blue"))),
		value.NewArray(value.String("id"), value.String("color")))

	merged := call(t, r, "merge_tables", left, right, value.String("id")).(value.TableValue).Ref
	assert.Equal(t, []string{"id", "name", "color"}, merged.Headers)
	assert.Equal(t, 3, merged.RowCount)

	colorCol, ok := merged.Column("color")
	require.True(t, ok)
	assert.Equal(t, value.String("red"), colorCol.Values[0])
	assert.Equal(t, value.Null{}, colorCol.Values[1])
	assert.Equal(t, value.String("blue"), colorCol.Values[2])

	nameCol, ok := merged.Column("name")
	require.True(t, ok)
	assert.Equal(t, value.Null{}, nameCol.Values[2])
}

func TestMergeTablesSuffixesCollidingColumns(t *testing.T) {
	r := newTestRegistry()
	left := call(t, r, "table",
		value.NewArray(value.NewArray(value.Int(1), value.String("old"))),
		value.NewArray(value.String("id"), value.String("status")))
	right := call(t, r, "table",
		value.NewArray(value.NewArray(value.Int(1), value.String("new"))),
		value.NewArray(value.String("id"), value.String("status")))

	merged := call(t, r, "merge_tables", left, right, value.String("id")).(value.TableValue).Ref
	assert.Equal(t, []string{"id", "status", "status_right"}, merged.Headers)
}

func TestTableSampleDrawsDistinctRowsWithoutReplacement(t *testing.T) {
	r := NewRegistry(Services{
		Print: func(string) {},
		Warn:  func(string) {},
		Rand:  rand.New(rand.NewSource(7)),
	})
	rows := make([]value.Value, 10)
	for i := range rows {
		rows[i] = value.NewArray(value.Int(int64(i)))
	}
	src := call(t, r, "table", value.NewArray(rows...), value.NewArray(value.String("n")))
	sampled := call(t, r, "table_sample", src, value.Int(4)).(value.TableValue).Ref
	assert.Equal(t, 4, sampled.RowCount)

	col, ok := sampled.Column("n")
	require.True(t, ok)
	seen := map[int64]bool{}
	var prev int64 = -1
	for _, v := range col.Values {
		n := int64(v.(value.Int))
		assert.False(t, seen[n], "table_sample() returned duplicate row %d", n)
		seen[n] = true
		assert.True(t, n > prev, "table_sample() must preserve source row order")
		prev = n
	}
}

func TestTableSampleCapsCountAtRowCount(t *testing.T) {
	r := newTestRegistry()
	src := call(t, r, "table", value.NewArray(value.NewArray(value.Int(1))), value.NewArray(value.String("n")))
	sampled := call(t, r, "table_sample", src, value.Int(99)).(value.TableValue).Ref
	assert.Equal(t, 1, sampled.RowCount)
}

func TestAnalyzeCSVReportsShapeWithoutMaterializingTable(t *testing.T) {
	fsys := iofs.NewVirtualFS()
	fsys.Put("data.csv", []byte("id,name\n1,alice\n2,bob\n"))
	r, _ := newTestRegistryWithFS(fsys)

	info := call(t, r, "analyze_csv", value.String("data.csv")).(value.Object)
	headers, ok := info.Get("headers")
	require.True(t, ok)
	assert.Equal(t, "['id', 'name']", value.Str(headers))
	rowCount, ok := info.Get("row_count")
	require.True(t, ok)
	assert.Equal(t, value.Int(2), rowCount)
}

func TestReadCSVSafeSkipsMalformedRowsAndWarns(t *testing.T) {
	fsys := iofs.NewVirtualFS()
	fsys.Put("data.csv", []byte("id,name\n1,alice\n2,al\"ice\n3,carol\n"))
	r, warnings := newTestRegistryWithFS(fsys)

	result := call(t, r, "read_csv_safe", value.String("data.csv"))
	table := result.(value.TableValue).Ref
	assert.Equal(t, 2, table.RowCount)
	assert.NotEmpty(t, *warnings)
}
