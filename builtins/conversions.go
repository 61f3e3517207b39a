package builtins

import (
	"fmt"
	"strconv"

	"github.com/golang-sql/civil"
	"github.com/shopspring/decimal"

	"github.com/datacode-lang/datacode/value"
)

func registerConversions(r *Registry, svc Services) {
	r.add("int", "system", 1, 1, func(ctx *Context, args []value.Value) (value.Value, error) {
		switch x := args[0].(type) {
		case value.Int:
			return x, nil
		case value.Real:
			return value.Int(int64(x)), nil
		case value.Bool:
			if x {
				return value.Int(1), nil
			}
			return value.Int(0), nil
		case value.String:
			n, err := strconv.ParseInt(string(x), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("cannot convert %q to int", string(x))
			}
			return value.Int(n), nil
		}
		return nil, fmt.Errorf("cannot convert %s to int", value.TypeName(args[0]))
	})

	r.add("float", "system", 1, 1, func(ctx *Context, args []value.Value) (value.Value, error) {
		switch x := args[0].(type) {
		case value.Int:
			return value.Real(float64(x)), nil
		case value.Real:
			return x, nil
		case value.String:
			f, err := strconv.ParseFloat(string(x), 64)
			if err != nil {
				return nil, fmt.Errorf("cannot convert %q to float", string(x))
			}
			return value.Real(f), nil
		}
		return nil, fmt.Errorf("cannot convert %s to float", value.TypeName(args[0]))
	})

	r.add("bool", "system", 1, 1, func(ctx *Context, args []value.Value) (value.Value, error) {
		return value.Bool(value.Truthy(args[0])), nil
	})

	r.add("str", "system", 1, 1, func(ctx *Context, args []value.Value) (value.Value, error) {
		return value.String(value.Str(args[0])), nil
	})

	r.add("date", "system", 1, 1, func(ctx *Context, args []value.Value) (value.Value, error) {
		s, ok := args[0].(value.String)
		if !ok {
			return nil, fmt.Errorf("date() expects a String in YYYY-MM-DD form")
		}
		d, err := civil.ParseDate(string(s))
		if err != nil {
			return nil, fmt.Errorf("invalid date %q", string(s))
		}
		return value.Date{Date: d}, nil
	})

	r.add("money", "system", 1, 2, func(ctx *Context, args []value.Value) (value.Value, error) {
		dec, ok := value.ToDecimal(args[0])
		if !ok {
			if s, ok := args[0].(value.String); ok {
				parsed, err := decimal.NewFromString(string(s))
				if err != nil {
					return nil, fmt.Errorf("cannot convert %q to money", string(s))
				}
				dec = parsed
			} else {
				return nil, fmt.Errorf("cannot convert %s to money", value.TypeName(args[0]))
			}
		}
		code := "USD"
		if len(args) == 2 {
			c, ok := args[1].(value.String)
			if !ok {
				return nil, fmt.Errorf("money() currency code must be a String")
			}
			code = string(c)
		}
		return value.Currency{Amount: dec, Code: code}, nil
	})

	r.add("now", "system", 0, 0, func(ctx *Context, args []value.Value) (value.Value, error) {
		if svc.Now != nil {
			return svc.Now(), nil
		}
		return value.Null{}, nil
	})
}
