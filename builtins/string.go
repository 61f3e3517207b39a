package builtins

import (
	"fmt"
	"strings"

	"github.com/datacode-lang/datacode/value"
)

func registerString(r *Registry, svc Services) {
	r.add("length", "string", 1, 1, stringOrArrayLen)
	r.add("len", "string", 1, 1, stringOrArrayLen)

	r.add("upper", "string", 1, 1, stringMap(strings.ToUpper))
	r.add("lower", "string", 1, 1, stringMap(strings.ToLower))
	r.add("trim", "string", 1, 1, stringMap(strings.TrimSpace))

	r.add("split", "string", 2, 2, func(ctx *Context, args []value.Value) (value.Value, error) {
		s, ok1 := args[0].(value.String)
		sep, ok2 := args[1].(value.String)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("split() expects two Strings")
		}
		parts := strings.Split(string(s), string(sep))
		items := make([]value.Value, len(parts))
		for i, p := range parts {
			items[i] = value.String(p)
		}
		return value.NewArray(items...), nil
	})

	r.add("join", "string", 2, 2, func(ctx *Context, args []value.Value) (value.Value, error) {
		arr, ok1 := args[0].(value.Array)
		sep, ok2 := args[1].(value.String)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("join() expects an Array and a String")
		}
		parts := make([]string, len(arr.Cell.Items))
		for i, it := range arr.Cell.Items {
			parts[i] = value.Str(it)
		}
		return value.String(strings.Join(parts, string(sep))), nil
	})

	r.add("contains", "string", 2, 2, func(ctx *Context, args []value.Value) (value.Value, error) {
		switch x := args[0].(type) {
		case value.String:
			sub, ok := args[1].(value.String)
			if !ok {
				return nil, fmt.Errorf("contains() on a String requires a String needle")
			}
			return value.Bool(strings.Contains(string(x), string(sub))), nil
		case value.Array:
			for _, item := range x.Cell.Items {
				if value.Equal(item, args[1]) {
					return value.Bool(true), nil
				}
			}
			return value.Bool(false), nil
		}
		return nil, fmt.Errorf("contains() requires a String or Array")
	})
}

func stringOrArrayLen(ctx *Context, args []value.Value) (value.Value, error) {
	switch x := args[0].(type) {
	case value.String:
		return value.Int(int64(len([]rune(string(x))))), nil
	case value.Array:
		return value.Int(int64(len(x.Cell.Items))), nil
	case value.Object:
		return value.Int(int64(len(x.Cell.Keys))), nil
	}
	return nil, fmt.Errorf("length() requires a String, Array, or Object")
}

func stringMap(f func(string) string) Func {
	return func(ctx *Context, args []value.Value) (value.Value, error) {
		s, ok := args[0].(value.String)
		if !ok {
			return nil, fmt.Errorf("requires a String")
		}
		return value.String(f(string(s))), nil
	}
}
