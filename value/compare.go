package value

import "github.com/shopspring/decimal"

// Truthy implements the truthiness table: Null/false/0/0.0/""/[]/{} are
// falsy, everything else (including Currency/Date/Table — a non-Null
// value with no emptiness concept is truthy) is truthy.
func Truthy(v Value) bool {
	switch x := v.(type) {
	case Null:
		return false
	case Bool:
		return bool(x)
	case Int:
		return x != 0
	case Real:
		return x != 0
	case String:
		return x != ""
	case Array:
		return len(x.Cell.Items) != 0
	case Object:
		return len(x.Cell.Keys) != 0
	default:
		return true
	}
}

// asFloat reports whether v is Int or Real and returns it as a float64
// alongside whether the original was an Int (used to decide result type
// promotion).
func asFloat(v Value) (f float64, isInt bool, ok bool) {
	switch x := v.(type) {
	case Int:
		return float64(x), true, true
	case Real:
		return float64(x), false, true
	}
	return 0, false, false
}

// Equal implements value-based equality: numeric comparison across
// Int/Real, exact String/Date/Currency equality, element-wise for
// Array/Object, and Null equal only to Null.
func Equal(a, b Value) bool {
	if _, aNull := a.(Null); aNull {
		_, bNull := b.(Null)
		return bNull
	}
	if af, _, aOK := asFloat(a); aOK {
		if bf, _, bOK := asFloat(b); bOK {
			return af == bf
		}
		return false
	}
	switch x := a.(type) {
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case String:
		y, ok := b.(String)
		return ok && x == y
	case Currency:
		y, ok := b.(Currency)
		return ok && x.Code == y.Code && x.Amount.Equal(y.Amount)
	case Date:
		y, ok := b.(Date)
		return ok && x.Date == y.Date
	case Path:
		y, ok := b.(Path)
		return ok && x.Raw == y.Raw
	case PathPattern:
		y, ok := b.(PathPattern)
		return ok && x.Raw == y.Raw
	case Array:
		y, ok := b.(Array)
		if !ok || len(x.Cell.Items) != len(y.Cell.Items) {
			return false
		}
		for i := range x.Cell.Items {
			if !Equal(x.Cell.Items[i], y.Cell.Items[i]) {
				return false
			}
		}
		return true
	case Object:
		y, ok := b.(Object)
		if !ok || len(x.Cell.Keys) != len(y.Cell.Keys) {
			return false
		}
		for _, k := range x.Cell.Keys {
			yv, ok := y.Get(k)
			if !ok {
				return false
			}
			xv, _ := x.Get(k)
			if !Equal(xv, yv) {
				return false
			}
		}
		return true
	case TableValue:
		y, ok := b.(TableValue)
		return ok && x.Ref == y.Ref
	case FunctionValue:
		y, ok := b.(FunctionValue)
		return ok && x.Descriptor == y.Descriptor
	}
	return false
}

// Less implements the natural ordering used by sort()/comparisons: numeric
// across Int/Real, lexicographic for String. It returns an error for types
// with no defined ordering (TypeError).
func Less(a, b Value) (bool, error) {
	if af, _, aOK := asFloat(a); aOK {
		if bf, _, bOK := asFloat(b); bOK {
			return af < bf, nil
		}
	}
	if as, ok := a.(String); ok {
		if bs, ok := b.(String); ok {
			return as < bs, nil
		}
	}
	if ad, ok := a.(Date); ok {
		if bd, ok := b.(Date); ok {
			return ad.Date.Before(bd.Date), nil
		}
	}
	if ac, ok := a.(Currency); ok {
		if bc, ok := b.(Currency); ok && ac.Code == bc.Code {
			return ac.Amount.LessThan(bc.Amount), nil
		}
	}
	return false, &TypeErrorValue{Reason: "values are not comparable"}
}

// TypeErrorValue is a lightweight error marker value package helpers can
// return without importing the interp error taxonomy (which in turn
// imports value); interp wraps it into a proper interperr.Error.
type TypeErrorValue struct {
	Reason string
}

func (e *TypeErrorValue) Error() string { return e.Reason }

// ToDecimal converts a numeric Value to decimal.Decimal, used by money()
// and Currency arithmetic.
func ToDecimal(v Value) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case Int:
		return decimal.NewFromInt(int64(x)), true
	case Real:
		return decimal.NewFromFloat(float64(x)), true
	case Currency:
		return x.Amount, true
	}
	return decimal.Decimal{}, false
}
