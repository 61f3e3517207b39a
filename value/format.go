package value

import (
	"strconv"
	"strings"
)

// TypeName returns the canonical lowercase type name used by typeof()
// (SPEC_FULL.md "typeof() return values").
func TypeName(v Value) string {
	return v.Kind().String()
}

// Str renders v the way str() and print() do (SPEC_FULL.md "str() formatting
// of each Value variant").
func Str(v Value) string {
	switch x := v.(type) {
	case Null:
		return "null"
	case Bool:
		if x {
			return "true"
		}
		return "false"
	case Int:
		return strconv.FormatInt(int64(x), 10)
	case Real:
		return strconv.FormatFloat(float64(x), 'f', -1, 64)
	case String:
		return string(x)
	case Currency:
		return x.Amount.String() + " " + x.Code
	case Date:
		return x.Date.String()
	case Path:
		return x.Raw
	case PathPattern:
		return x.Raw
	case Array:
		parts := make([]string, len(x.Cell.Items))
		for i, item := range x.Cell.Items {
			parts[i] = reprElement(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case Object:
		parts := make([]string, 0, len(x.Cell.Keys))
		for _, k := range x.Cell.Keys {
			val, _ := x.Get(k)
			parts = append(parts, k+": "+reprElement(val))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case TableValue:
		return "<" + strconv.Itoa(x.Ref.RowCount) + " rows x " + strconv.Itoa(len(x.Ref.Columns)) + " cols>"
	case FunctionValue:
		return "<function " + x.Descriptor.Name + ">"
	}
	return ""
}

// reprElement renders a Value nested inside an Array/Object literal's str()
// form: Strings get quoted so `str([1, 'a'])` reads unambiguously as
// `[1, 'a']` rather than `[1, a]`.
func reprElement(v Value) string {
	if s, ok := v.(String); ok {
		return "'" + string(s) + "'"
	}
	return Str(v)
}
