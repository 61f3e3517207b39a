package builtins

import (
	"fmt"
	"sort"

	"github.com/datacode-lang/datacode/value"
)

func registerArray(r *Registry, svc Services) {
	r.add("push", "array", 2, 2, func(ctx *Context, args []value.Value) (value.Value, error) {
		arr, ok := args[0].(value.Array)
		if !ok {
			return nil, fmt.Errorf("push() requires an Array")
		}
		arr.Cell.Items = append(arr.Cell.Items, args[1])
		return arr, nil
	})

	r.add("append", "array", 2, 2, func(ctx *Context, args []value.Value) (value.Value, error) {
		arr, ok := args[0].(value.Array)
		if !ok {
			return nil, fmt.Errorf("append() requires an Array")
		}
		items := append(append([]value.Value(nil), arr.Cell.Items...), args[1])
		return value.NewArray(items...), nil
	})

	r.add("pop", "array", 1, 1, func(ctx *Context, args []value.Value) (value.Value, error) {
		arr, ok := args[0].(value.Array)
		if !ok {
			return nil, fmt.Errorf("pop() requires an Array")
		}
		n := len(arr.Cell.Items)
		if n == 0 {
			return nil, indexError(ctx, "pop() on an empty array")
		}
		last := arr.Cell.Items[n-1]
		arr.Cell.Items = arr.Cell.Items[:n-1]
		return last, nil
	})

	r.add("sort", "array", 1, 1, func(ctx *Context, args []value.Value) (value.Value, error) {
		arr, ok := args[0].(value.Array)
		if !ok {
			return nil, fmt.Errorf("sort() requires an Array")
		}
		items := append([]value.Value(nil), arr.Cell.Items...)
		var sortErr error
		sort.SliceStable(items, func(i, j int) bool {
			less, err := value.Less(items[i], items[j])
			if err != nil && sortErr == nil {
				sortErr = err
			}
			return less
		})
		if sortErr != nil {
			return nil, typeError(ctx, "sort(): %s", sortErr.Error())
		}
		return value.NewArray(items...), nil
	})

	r.add("unique", "array", 1, 1, func(ctx *Context, args []value.Value) (value.Value, error) {
		arr, ok := args[0].(value.Array)
		if !ok {
			return nil, fmt.Errorf("unique() requires an Array")
		}
		var out []value.Value
		for _, item := range arr.Cell.Items {
			seen := false
			for _, existing := range out {
				if value.Equal(existing, item) {
					seen = true
					break
				}
			}
			if !seen {
				out = append(out, item)
			}
		}
		return value.NewArray(out...), nil
	})

	r.add("reverse", "array", 1, 1, func(ctx *Context, args []value.Value) (value.Value, error) {
		arr, ok := args[0].(value.Array)
		if !ok {
			return nil, fmt.Errorf("reverse() requires an Array")
		}
		n := len(arr.Cell.Items)
		out := make([]value.Value, n)
		for i, item := range arr.Cell.Items {
			out[n-1-i] = item
		}
		return value.NewArray(out...), nil
	})

	r.add("sum", "array", 1, 1, func(ctx *Context, args []value.Value) (value.Value, error) {
		arr, ok := args[0].(value.Array)
		if !ok {
			return nil, fmt.Errorf("sum() requires an Array")
		}
		var total float64
		allInt := true
		for _, item := range arr.Cell.Items {
			f, ok := asF(item)
			if !ok {
				return nil, typeError(ctx, "sum() requires an Array of numbers")
			}
			if _, isInt := item.(value.Int); !isInt {
				allInt = false
			}
			total += f
		}
		return numericResult(total, allInt), nil
	})

	r.add("average", "array", 1, 1, func(ctx *Context, args []value.Value) (value.Value, error) {
		arr, ok := args[0].(value.Array)
		if !ok {
			return nil, fmt.Errorf("average() requires an Array")
		}
		if len(arr.Cell.Items) == 0 {
			return nil, typeError(ctx, "average() of an empty array")
		}
		var total float64
		for _, item := range arr.Cell.Items {
			f, ok := asF(item)
			if !ok {
				return nil, typeError(ctx, "average() requires an Array of numbers")
			}
			total += f
		}
		return value.Real(total / float64(len(arr.Cell.Items))), nil
	})

	r.add("count", "array", 1, 1, stringOrArrayLen)

	r.add("range", "array", 1, 3, func(ctx *Context, args []value.Value) (value.Value, error) {
		var start, end, step int64 = 0, 0, 1
		ints := make([]int64, len(args))
		for i, a := range args {
			n, ok := a.(value.Int)
			if !ok {
				return nil, fmt.Errorf("range() requires int arguments")
			}
			ints[i] = int64(n)
		}
		switch len(ints) {
		case 1:
			end = ints[0]
		case 2:
			start, end = ints[0], ints[1]
		case 3:
			start, end, step = ints[0], ints[1], ints[2]
			if step == 0 {
				return nil, fmt.Errorf("range() step must not be zero")
			}
		}
		var items []value.Value
		if step > 0 {
			for i := start; i < end; i += step {
				items = append(items, value.Int(i))
			}
		} else {
			for i := start; i > end; i += step {
				items = append(items, value.Int(i))
			}
		}
		return value.NewArray(items...), nil
	})

	r.add("enum", "array", 1, 1, func(ctx *Context, args []value.Value) (value.Value, error) {
		elems, err := iterableValues(args[0])
		if err != nil {
			return nil, typeError(ctx, "%s", err.Error())
		}
		items := make([]value.Value, len(elems))
		for i, v := range elems {
			items[i] = value.NewArray(value.Int(int64(i)), v)
		}
		return value.NewArray(items...), nil
	})
}

// iterableValues mirrors interp.iterableElements for builtins that accept
// any iterable (enum() iterates over any iterable); duplicated rather
// than imported to avoid builtins depending on interp, which itself
// depends on builtins.
func iterableValues(v value.Value) ([]value.Value, error) {
	switch x := v.(type) {
	case value.Array:
		return append([]value.Value(nil), x.Cell.Items...), nil
	case value.Object:
		out := make([]value.Value, 0, len(x.Cell.Keys))
		for _, k := range x.Cell.Keys {
			val, _ := x.Get(k)
			out = append(out, val)
		}
		return out, nil
	case value.TableValue:
		out := make([]value.Value, x.Ref.RowCount)
		for i := 0; i < x.Ref.RowCount; i++ {
			out[i] = x.Ref.RowAsObject(i)
		}
		return out, nil
	case value.String:
		runes := []rune(string(x))
		out := make([]value.Value, len(runes))
		for i, r := range runes {
			out[i] = value.String(string(r))
		}
		return out, nil
	}
	return nil, fmt.Errorf("value of type %s is not iterable", value.TypeName(v))
}
