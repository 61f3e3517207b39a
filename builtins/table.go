package builtins

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"

	"github.com/datacode-lang/datacode/value"
)

// inferColumnType implements dominant-type inference: the
// Kind occurring in more than half of a column's values wins; otherwise
// the column is MixedKind and its histogram is kept so the heterogeneity
// warning can report minority percentages.
func inferColumnType(values []value.Value) (value.Kind, map[value.Kind]int) {
	counts := map[value.Kind]int{}
	for _, v := range values {
		counts[v.Kind()]++
	}
	var dominant value.Kind
	best := 0
	for k, n := range counts {
		if n > best {
			dominant, best = k, n
		}
	}
	if len(values) > 0 && best*2 > len(values) {
		return dominant, nil
	}
	return value.MixedKind, counts
}

func buildTable(rows [][]value.Value, headers []string, warn func(string)) (*value.Table, error) {
	if len(rows) == 0 {
		return &value.Table{}, nil
	}
	width := len(rows[0])
	for _, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("table(): all rows must have the same number of columns")
		}
	}
	if headers == nil {
		headers = make([]string, width)
		for i := range headers {
			headers[i] = "Column_" + strconv.Itoa(i)
		}
		if warn != nil {
			warn(fmt.Sprintf("table(): no headers given, generated %d auto-named column(s)", width))
		}
	}
	if len(headers) != width {
		return nil, fmt.Errorf("table(): %d headers but rows have %d columns", len(headers), width)
	}

	cols := make([]*value.Column, width)
	for ci := 0; ci < width; ci++ {
		values := make([]value.Value, len(rows))
		for ri, row := range rows {
			values[ri] = row[ci]
		}
		kind, histogram := inferColumnType(values)
		col := &value.Column{Name: headers[ci], Type: kind, Values: values, Histogram: histogram}
		cols[ci] = col
		if kind == value.MixedKind && warn != nil {
			minority := len(values) - histogram[majorityKind(histogram)]
			pct := 0
			if len(values) > 0 {
				pct = minority * 100 / len(values)
			}
			warn(fmt.Sprintf("table(): column %q is heterogeneous (%d%% minority types)", headers[ci], pct))
		}
	}
	return &value.Table{Headers: headers, Columns: cols, RowCount: len(rows)}, nil
}

func majorityKind(histogram map[value.Kind]int) value.Kind {
	var best value.Kind
	bestN := -1
	for k, n := range histogram {
		if n > bestN {
			best, bestN = k, n
		}
	}
	return best
}

func registerTable(r *Registry, svc Services) {
	ctor := func(ctx *Context, args []value.Value) (value.Value, error) {
		data, ok := args[0].(value.Array)
		if !ok {
			return nil, fmt.Errorf("table() expects a 2-D Array of rows")
		}
		rows := make([][]value.Value, len(data.Cell.Items))
		for i, item := range data.Cell.Items {
			rowArr, ok := item.(value.Array)
			if !ok {
				return nil, fmt.Errorf("table() expects every row to be an Array")
			}
			rows[i] = rowArr.Cell.Items
		}
		var headers []string
		if len(args) == 2 {
			hdrArr, ok := args[1].(value.Array)
			if !ok {
				return nil, fmt.Errorf("table() headers argument must be an Array of Strings")
			}
			headers = make([]string, len(hdrArr.Cell.Items))
			for i, h := range hdrArr.Cell.Items {
				s, ok := h.(value.String)
				if !ok {
					return nil, fmt.Errorf("table() headers must be Strings")
				}
				headers[i] = string(s)
			}
		}
		t, err := buildTable(rows, headers, svc.Warn)
		if err != nil {
			return nil, err
		}
		return value.TableValue{Ref: t}, nil
	}
	r.add("table", "table", 1, 2, ctor)
	r.add("table_create", "table", 1, 2, ctor)

	r.add("show_table", "table", 1, 1, func(ctx *Context, args []value.Value) (value.Value, error) {
		t, err := asTable(args[0])
		if err != nil {
			return nil, err
		}
		if svc.Print != nil {
			svc.Print(fmt.Sprintf("%v", t.Headers))
			for i := 0; i < t.RowCount; i++ {
				svc.Print(value.Str(t.Row(i)))
			}
		}
		return value.Null{}, nil
	})

	r.add("table_info", "table", 1, 1, func(ctx *Context, args []value.Value) (value.Value, error) {
		t, err := asTable(args[0])
		if err != nil {
			return nil, err
		}
		obj := value.NewObject()
		obj.Set("row_count", value.Int(int64(t.RowCount)))
		obj.Set("column_count", value.Int(int64(len(t.Columns))))
		types := make([]value.Value, len(t.Columns))
		for i, c := range t.Columns {
			types[i] = value.String(c.Type.String())
		}
		obj.Set("headers", headerArray(t))
		obj.Set("types", value.NewArray(types...))
		return obj, nil
	})

	r.add("table_headers", "table", 1, 1, func(ctx *Context, args []value.Value) (value.Value, error) {
		t, err := asTable(args[0])
		if err != nil {
			return nil, err
		}
		return headerArray(t), nil
	})

	r.add("table_head", "table", 1, 2, sliceRows(true))
	r.add("table_tail", "table", 1, 2, sliceRows(false))

	r.add("table_select", "table", 2, 2, func(ctx *Context, args []value.Value) (value.Value, error) {
		t, err := asTable(args[0])
		if err != nil {
			return nil, err
		}
		namesArr, ok := args[1].(value.Array)
		if !ok {
			return nil, fmt.Errorf("table_select() expects an Array of column names")
		}
		var cols []*value.Column
		var headers []string
		for _, n := range namesArr.Cell.Items {
			name, ok := n.(value.String)
			if !ok {
				return nil, fmt.Errorf("table_select() column names must be Strings")
			}
			col, ok := t.Column(string(name))
			if !ok {
				return nil, fmt.Errorf("table_select(): no such column %q", string(name))
			}
			cols = append(cols, &value.Column{Name: col.Name, Type: col.Type, Values: append([]value.Value(nil), col.Values...)})
			headers = append(headers, col.Name)
		}
		return value.TableValue{Ref: &value.Table{Headers: headers, Columns: cols, RowCount: t.RowCount}}, nil
	})

	r.add("table_sort", "table", 2, 3, func(ctx *Context, args []value.Value) (value.Value, error) {
		t, err := asTable(args[0])
		if err != nil {
			return nil, err
		}
		name, ok := args[1].(value.String)
		if !ok {
			return nil, fmt.Errorf("table_sort() expects a column name String")
		}
		col, ok := t.Column(string(name))
		if !ok {
			return nil, fmt.Errorf("table_sort(): no such column %q", string(name))
		}
		desc := false
		if len(args) == 3 {
			b, ok := args[2].(value.Bool)
			if !ok {
				return nil, fmt.Errorf("table_sort() third argument must be a Bool")
			}
			desc = bool(b)
		}
		order := make([]int, t.RowCount)
		for i := range order {
			order[i] = i
		}
		var sortErr error
		sort.SliceStable(order, func(i, j int) bool {
			less, err := value.Less(col.Values[order[i]], col.Values[order[j]])
			if err != nil {
				sortErr = err
			}
			if desc {
				return !less
			}
			return less
		})
		if sortErr != nil {
			return nil, typeError(ctx, "table_sort(): %s", sortErr.Error())
		}
		return value.TableValue{Ref: reorder(t, order)}, nil
	})

	r.add("table_where", "table", 2, 2, tableFilterByColumn)
	r.add("table_filter", "table", 2, 2, tableFilterByColumn)

	r.add("table_distinct", "table", 1, 2, func(ctx *Context, args []value.Value) (value.Value, error) {
		t, err := asTable(args[0])
		if err != nil {
			return nil, err
		}
		colName := ""
		if len(args) == 2 {
			s, ok := args[1].(value.String)
			if !ok {
				return nil, fmt.Errorf("table_distinct() second argument must be a String")
			}
			colName = string(s)
		}
		var keep []int
		var seenKeys []value.Value
		for i := 0; i < t.RowCount; i++ {
			var key value.Value
			if colName != "" {
				c, ok := t.Column(colName)
				if !ok {
					return nil, fmt.Errorf("table_distinct(): no such column %q", colName)
				}
				key = c.Values[i]
			} else {
				key = t.Row(i)
			}
			dup := false
			for _, k := range seenKeys {
				if value.Equal(k, key) {
					dup = true
					break
				}
			}
			if !dup {
				seenKeys = append(seenKeys, key)
				keep = append(keep, i)
			}
		}
		return value.TableValue{Ref: reorder(t, keep)}, nil
	})

	r.add("table_sample", "table", 2, 2, func(ctx *Context, args []value.Value) (value.Value, error) {
		t, err := asTable(args[0])
		if err != nil {
			return nil, err
		}
		n, ok := args[1].(value.Int)
		if !ok {
			return nil, fmt.Errorf("table_sample() expects an Int row count")
		}
		count := int(n)
		if count > t.RowCount {
			count = t.RowCount
		}
		order := sampleIndices(randSource(svc), t.RowCount, count)
		return value.TableValue{Ref: reorder(t, order)}, nil
	})

	r.add("table_union", "table", 2, 2, func(ctx *Context, args []value.Value) (value.Value, error) {
		a, err := asTable(args[0])
		if err != nil {
			return nil, err
		}
		b, err := asTable(args[1])
		if err != nil {
			return nil, err
		}
		if len(a.Headers) != len(b.Headers) {
			return nil, typeError(ctx, "table_union(): column counts differ")
		}
		out := a.Clone()
		for i, c := range out.Columns {
			c.Values = append(c.Values, b.Columns[i].Values...)
		}
		out.RowCount = a.RowCount + b.RowCount
		return value.TableValue{Ref: out}, nil
	})

	r.add("merge_tables", "table", 3, 3, func(ctx *Context, args []value.Value) (value.Value, error) {
		left, err := asTable(args[0])
		if err != nil {
			return nil, err
		}
		right, err := asTable(args[1])
		if err != nil {
			return nil, err
		}
		key, ok := args[2].(value.String)
		if !ok {
			return nil, fmt.Errorf("merge_tables() expects a key column name String")
		}
		return mergeTables(ctx, left, right, string(key))
	})

	registerJoins(r, svc)
}

// mergeTables implements the "merge" derived operation: an outer merge on
// a shared key column, distinct from table_join in that the key appears
// once in the output (not once per side) and every other right-hand column
// is appended, taking table_join's right suffix when the left table already
// has that name. Rows present in only one table keep Null in the other
// table's columns.
func mergeTables(ctx *Context, left, right *value.Table, key string) (value.Value, error) {
	leftKeyIdx := indexOfHeader(left.Headers, key)
	if leftKeyIdx < 0 {
		return nil, fmt.Errorf("merge_tables(): left table has no column %q", key)
	}
	rightCol, ok := right.Column(key)
	if !ok {
		return nil, fmt.Errorf("merge_tables(): right table has no column %q", key)
	}

	seen := map[string]bool{}
	for _, h := range left.Headers {
		seen[h] = true
	}
	headers := append([]string(nil), left.Headers...)
	var rightIdx []int
	for i, h := range right.Headers {
		if h == key {
			continue
		}
		name := h
		if seen[name] {
			name = name + rightSuffix
		}
		headers = append(headers, name)
		rightIdx = append(rightIdx, i)
	}

	leftKeyCol := left.Columns[leftKeyIdx]
	var outRows [][]value.Value
	rightMatched := make([]bool, right.RowCount)
	for li := 0; li < left.RowCount; li++ {
		row := append([]value.Value(nil), left.Row(li).Cell.Items...)
		matched := -1
		for ri := 0; ri < right.RowCount; ri++ {
			if value.Equal(leftKeyCol.Values[li], rightCol.Values[ri]) {
				matched = ri
				rightMatched[ri] = true
				break
			}
		}
		for _, ci := range rightIdx {
			if matched >= 0 {
				row = append(row, right.Columns[ci].Values[matched])
			} else {
				row = append(row, value.Null{})
			}
		}
		outRows = append(outRows, row)
	}
	for ri := 0; ri < right.RowCount; ri++ {
		if rightMatched[ri] {
			continue
		}
		row := make([]value.Value, len(left.Headers), len(headers))
		for i := range row {
			row[i] = value.Null{}
		}
		row[leftKeyIdx] = rightCol.Values[ri]
		for _, ci := range rightIdx {
			row = append(row, right.Columns[ci].Values[ri])
		}
		outRows = append(outRows, row)
	}

	t, err := buildTable(outRows, headers, nil)
	if err != nil {
		return nil, typeError(ctx, "merge_tables(): %s", err.Error())
	}
	return value.TableValue{Ref: t}, nil
}

func indexOfHeader(headers []string, name string) int {
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	return -1
}

func asTable(v value.Value) (*value.Table, error) {
	t, ok := v.(value.TableValue)
	if !ok {
		return nil, fmt.Errorf("expected a Table value")
	}
	return t.Ref, nil
}

func headerArray(t *value.Table) value.Array {
	items := make([]value.Value, len(t.Headers))
	for i, h := range t.Headers {
		items[i] = value.String(h)
	}
	return value.NewArray(items...)
}

func reorder(t *value.Table, order []int) *value.Table {
	cols := make([]*value.Column, len(t.Columns))
	for ci, c := range t.Columns {
		values := make([]value.Value, len(order))
		for i, idx := range order {
			values[i] = c.Values[idx]
		}
		cols[ci] = &value.Column{Name: c.Name, Type: c.Type, Values: values}
	}
	return &value.Table{Headers: append([]string(nil), t.Headers...), Columns: cols, RowCount: len(order)}
}

// randSource returns svc.Rand, or a new generator seeded with 1 when the
// embedder hasn't wired one in (e.g. unit tests constructing a Registry
// directly).
func randSource(svc Services) *rand.Rand {
	if svc.Rand != nil {
		return svc.Rand
	}
	return rand.New(rand.NewSource(1))
}

// sampleIndices draws count distinct row indices out of n without
// replacement by shuffling all n indices and keeping the first count, then
// sorts them so
// table_sample's output preserves the source table's row order.
func sampleIndices(r *rand.Rand, n, count int) []int {
	pool := make([]int, n)
	for i := range pool {
		pool[i] = i
	}
	r.Shuffle(n, func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	picked := append([]int(nil), pool[:count]...)
	sort.Ints(picked)
	return picked
}

func sliceRows(head bool) Func {
	return func(ctx *Context, args []value.Value) (value.Value, error) {
		t, err := asTable(args[0])
		if err != nil {
			return nil, err
		}
		n := 5
		if len(args) == 2 {
			v, ok := args[1].(value.Int)
			if !ok {
				return nil, fmt.Errorf("expects an Int row count")
			}
			n = int(v)
		}
		if n > t.RowCount {
			n = t.RowCount
		}
		order := make([]int, n)
		if head {
			for i := range order {
				order[i] = i
			}
		} else {
			start := t.RowCount - n
			for i := range order {
				order[i] = start + i
			}
		}
		return value.TableValue{Ref: reorder(t, order)}, nil
	}
}

func tableFilterByColumn(ctx *Context, args []value.Value) (value.Value, error) {
	t, err := asTable(args[0])
	if err != nil {
		return nil, err
	}
	predObj, ok := args[1].(value.Object)
	if !ok {
		return nil, fmt.Errorf("expects an Object of {column: expected_value}")
	}
	var keep []int
	for i := 0; i < t.RowCount; i++ {
		matched := true
		for _, key := range predObj.Cell.Keys {
			col, ok := t.Column(key)
			if !ok {
				return nil, fmt.Errorf("no such column %q", key)
			}
			want, _ := predObj.Get(key)
			if !value.Equal(col.Values[i], want) {
				matched = false
				break
			}
		}
		if matched {
			keep = append(keep, i)
		}
	}
	return value.TableValue{Ref: reorder(t, keep)}, nil
}
