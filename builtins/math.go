package builtins

import (
	"fmt"
	"math"

	"github.com/datacode-lang/datacode/value"
)

func asF(v value.Value) (float64, bool) {
	switch x := v.(type) {
	case value.Int:
		return float64(x), true
	case value.Real:
		return float64(x), true
	}
	return 0, false
}

// numericResult returns an Int when every input was Int and the math
// operation's float64 result is integral, matching the rest of the
// evaluator's numeric-promotion rule: Real only appears when a Real
// operand or a genuinely fractional result demands it.
func numericResult(f float64, allInt bool) value.Value {
	if allInt && f == math.Trunc(f) {
		return value.Int(int64(f))
	}
	return value.Real(f)
}

func registerMath(r *Registry, svc Services) {
	r.add("abs", "math", 1, 1, func(ctx *Context, args []value.Value) (value.Value, error) {
		switch x := args[0].(type) {
		case value.Int:
			if x < 0 {
				return -x, nil
			}
			return x, nil
		case value.Real:
			return value.Real(math.Abs(float64(x))), nil
		}
		return nil, fmt.Errorf("abs() requires a number")
	})

	r.add("sqrt", "math", 1, 1, func(ctx *Context, args []value.Value) (value.Value, error) {
		f, ok := asF(args[0])
		if !ok {
			return nil, fmt.Errorf("sqrt() requires a number")
		}
		if f < 0 {
			return nil, fmt.Errorf("sqrt() of a negative number")
		}
		return value.Real(math.Sqrt(f)), nil
	})

	r.add("pow", "math", 2, 2, func(ctx *Context, args []value.Value) (value.Value, error) {
		base, ok1 := asF(args[0])
		exp, ok2 := asF(args[1])
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("pow() requires two numbers")
		}
		_, li := args[0].(value.Int)
		_, ri := args[1].(value.Int)
		return numericResult(math.Pow(base, exp), li && ri && exp >= 0), nil
	})

	r.add("min", "math", 1, -1, reduceNumeric(func(a, b float64) float64 {
		if a < b {
			return a
		}
		return b
	}))

	r.add("max", "math", 1, -1, reduceNumeric(func(a, b float64) float64 {
		if a > b {
			return a
		}
		return b
	}))

	r.add("round", "math", 1, 2, func(ctx *Context, args []value.Value) (value.Value, error) {
		f, ok := asF(args[0])
		if !ok {
			return nil, fmt.Errorf("round() requires a number")
		}
		places := 0
		if len(args) == 2 {
			p, ok := args[1].(value.Int)
			if !ok {
				return nil, fmt.Errorf("round() second argument must be an int")
			}
			places = int(p)
		}
		scale := math.Pow(10, float64(places))
		rounded := math.Round(f*scale) / scale
		if places <= 0 {
			return value.Int(int64(rounded)), nil
		}
		return value.Real(rounded), nil
	})

	r.add("div", "math", 2, 2, func(ctx *Context, args []value.Value) (value.Value, error) {
		a, ok1 := asF(args[0])
		b, ok2 := asF(args[1])
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("div() requires two numbers")
		}
		if b == 0 {
			return nil, divisionByZero(ctx)
		}
		_, li := args[0].(value.Int)
		_, ri := args[1].(value.Int)
		if li && ri && int64(a)%int64(b) == 0 {
			return value.Int(int64(a) / int64(b)), nil
		}
		return value.Real(a / b), nil
	})
}

// reduceNumeric builds min()/max(): accepts either a list of numeric
// arguments, or a single Array of numbers (both forms are common in the
// teacher's and pack's numeric helper functions).
func reduceNumeric(pick func(a, b float64) float64) Func {
	return func(ctx *Context, args []value.Value) (value.Value, error) {
		nums := args
		if len(args) == 1 {
			if arr, ok := args[0].(value.Array); ok {
				nums = arr.Cell.Items
				if len(nums) == 0 {
					return nil, fmt.Errorf("requires at least one value")
				}
			}
		}
		allInt := true
		best, ok := asF(nums[0])
		if !ok {
			return nil, fmt.Errorf("requires numeric arguments")
		}
		if _, isInt := nums[0].(value.Int); !isInt {
			allInt = false
		}
		for _, n := range nums[1:] {
			f, ok := asF(n)
			if !ok {
				return nil, fmt.Errorf("requires numeric arguments")
			}
			if _, isInt := n.(value.Int); !isInt {
				allInt = false
			}
			best = pick(best, f)
		}
		return numericResult(best, allInt), nil
	}
}
