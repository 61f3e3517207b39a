package builtins

import (
	"fmt"

	"github.com/datacode-lang/datacode/value"
)

// leftSuffix and rightSuffix rename a column whose name appears in both
// tables of a join. They are fixed: no join built-in takes an argument to
// change them.
const (
	leftSuffix  = "_left"
	rightSuffix = "_right"
)

// registerJoins implements table_join and the specialised inner/left/
// right/full/cross/semi/anti variants: deterministic nested-loop scan,
// left rows outer, right rows inner, unmatched rows emitted after matches
// for left/right/full.
func registerJoins(r *Registry, svc Services) {
	variants := []string{"inner", "left", "right", "full", "cross", "semi", "anti"}
	for _, kind := range variants {
		kind := kind
		r.add("table_join_"+kind, "table", 3, 4, func(ctx *Context, args []value.Value) (value.Value, error) {
			return doJoin(ctx, kind, args)
		})
	}
	r.add("table_join", "table", 4, 5, func(ctx *Context, args []value.Value) (value.Value, error) {
		kindStr, ok := args[len(args)-1].(value.String)
		if !ok {
			return nil, fmt.Errorf("table_join() requires a join-kind String as its last argument")
		}
		return doJoin(ctx, string(kindStr), args[:len(args)-1])
	})
}

// doJoin expects args = (left, right, leftKey, [rightKey]); rightKey
// defaults to leftKey's name when omitted (common-column equi-join).
func doJoin(ctx *Context, kind string, args []value.Value) (value.Value, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("table_join requires (left, right, leftKey[, rightKey])")
	}
	left, err := asTable(args[0])
	if err != nil {
		return nil, err
	}
	right, err := asTable(args[1])
	if err != nil {
		return nil, err
	}
	leftKey, ok := args[2].(value.String)
	if !ok {
		return nil, fmt.Errorf("table_join() key arguments must be Strings")
	}
	rightKeyName := string(leftKey)
	if len(args) == 4 {
		rk, ok := args[3].(value.String)
		if !ok {
			return nil, fmt.Errorf("table_join() key arguments must be Strings")
		}
		rightKeyName = string(rk)
	}

	var leftCol, rightCol *value.Column
	if kind != "cross" {
		var ok bool
		leftCol, ok = left.Column(string(leftKey))
		if !ok {
			return nil, fmt.Errorf("table_join(): left table has no column %q", string(leftKey))
		}
		rightCol, ok = right.Column(rightKeyName)
		if !ok {
			return nil, fmt.Errorf("table_join(): right table has no column %q", rightKeyName)
		}
	}

	headers, leftIdx, rightIdx := joinedHeaders(left, right)

	var outRows [][]value.Value
	rightMatched := make([]bool, right.RowCount)

	for li := 0; li < left.RowCount; li++ {
		matchedAny := false
		for ri := 0; ri < right.RowCount; ri++ {
			if kind != "cross" && !value.Equal(leftCol.Values[li], rightCol.Values[ri]) {
				continue
			}
			matchedAny = true
			rightMatched[ri] = true
			switch kind {
			case "semi":
				continue
			case "anti":
				continue
			default:
				outRows = append(outRows, joinRow(left, right, li, ri, leftIdx, rightIdx))
			}
		}
		switch kind {
		case "semi":
			if matchedAny {
				outRows = append(outRows, left.Row(li).Cell.Items)
			}
		case "anti":
			if !matchedAny {
				outRows = append(outRows, left.Row(li).Cell.Items)
			}
		case "left", "full":
			if !matchedAny {
				outRows = append(outRows, joinRow(left, right, li, -1, leftIdx, rightIdx))
			}
		}
	}
	if kind == "right" || kind == "full" {
		for ri := 0; ri < right.RowCount; ri++ {
			if !rightMatched[ri] {
				outRows = append(outRows, joinRow(left, right, -1, ri, leftIdx, rightIdx))
			}
		}
	}

	outHeaders := headers
	if kind == "semi" || kind == "anti" {
		outHeaders = left.Headers
	}
	t, err := buildTable(outRows, outHeaders, nil)
	if err != nil {
		return nil, err
	}
	return value.TableValue{Ref: t}, nil
}

// joinedHeaders resolves column-name collisions with leftSuffix/
// rightSuffix and returns the column indices each output position is
// drawn from in (left then right) order.
func joinedHeaders(left, right *value.Table) (headers []string, leftIdx, rightIdx []int) {
	seen := map[string]bool{}
	for _, h := range left.Headers {
		seen[h] = true
	}
	for i, h := range left.Headers {
		headers = append(headers, h)
		leftIdx = append(leftIdx, i)
		_ = i
	}
	for i, h := range right.Headers {
		name := h
		if seen[name] {
			name = name + rightSuffix
			leftCollision := false
			for j, lh := range left.Headers {
				if lh == h {
					headers[j] = lh + leftSuffix
					leftCollision = true
				}
			}
			_ = leftCollision
		}
		headers = append(headers, name)
		rightIdx = append(rightIdx, i)
	}
	return headers, leftIdx, rightIdx
}

func joinRow(left, right *value.Table, li, ri int, leftIdx, rightIdx []int) []value.Value {
	row := make([]value.Value, 0, len(leftIdx)+len(rightIdx))
	for _, ci := range leftIdx {
		if li < 0 {
			row = append(row, value.Null{})
			continue
		}
		row = append(row, left.Columns[ci].Values[li])
	}
	for _, ci := range rightIdx {
		if ri < 0 {
			row = append(row, value.Null{})
			continue
		}
		row = append(row, right.Columns[ci].Values[ri])
	}
	return row
}
