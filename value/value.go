// Package value implements DataCode's runtime value model: a tagged union
// of variants with value-based equality and ordering, plus the Table data
// model built on top of it.
//
// Arrays, Objects, Tables and Functions are reference types (a Value
// wrapping a pointer to a shared cell): copying a Value never copies the
// underlying collection, and derived-operation builtins must allocate a
// fresh cell rather than mutate the one they were given.
package value

import (
	"github.com/golang-sql/civil"
	"github.com/shopspring/decimal"

	"github.com/datacode-lang/datacode/ast"
)

type Kind int

const (
	NullKind Kind = iota
	BoolKind
	IntKind
	RealKind
	StringKind
	CurrencyKind
	DateKind
	ArrayKind
	ObjectKind
	PathKind
	PathPatternKind
	TableKind
	FunctionKind
	// MixedKind only ever appears as a Column.Type, never as a Value.Kind.
	MixedKind
)

var kindNames = map[Kind]string{
	NullKind:        "null",
	BoolKind:        "bool",
	IntKind:         "int",
	RealKind:        "real",
	StringKind:      "string",
	CurrencyKind:    "currency",
	DateKind:        "date",
	ArrayKind:       "array",
	ObjectKind:      "object",
	PathKind:        "path",
	PathPatternKind: "pathpattern",
	TableKind:       "table",
	FunctionKind:    "function",
	MixedKind:       "mixed",
}

func (k Kind) String() string { return kindNames[k] }

// Value is the sum type every DataCode expression evaluates to.
type Value interface {
	Kind() Kind
}

// ---- scalar variants ----

type Null struct{}

func (Null) Kind() Kind { return NullKind }

type Bool bool

func (Bool) Kind() Kind { return BoolKind }

type Int int64

func (Int) Kind() Kind { return IntKind }

type Real float64

func (Real) Kind() Kind { return RealKind }

type String string

func (String) Kind() Kind { return StringKind }

// Currency carries its amount in decimal.Decimal rather than float64 so
// repeated money() arithmetic doesn't accumulate IEEE-754 rounding error;
// the restriction to IEEE-754 numeric semantics is scoped to Int/Real, and
// does not bar a more precise Currency representation.
type Currency struct {
	Amount decimal.Decimal
	Code   string
}

func (Currency) Kind() Kind { return CurrencyKind }

// Date wraps civil.Date: a calendar date with no time-of-day or zone.
type Date struct {
	civil.Date
}

func (Date) Kind() Kind { return DateKind }

// Path is a composable filesystem path, possibly `lib://share/...`.
type Path struct {
	Raw string
}

func (Path) Kind() Kind { return PathKind }

// PathPattern is a glob pattern (contains `*`, `?`, or `[`).
type PathPattern struct {
	Raw string
}

func (PathPattern) Kind() Kind { return PathPatternKind }

// ---- reference variants ----

// ArrayCell is the shared, mutable interior of an Array value.
type ArrayCell struct {
	Items []Value
}

type Array struct {
	Cell *ArrayCell
}

func (Array) Kind() Kind { return ArrayKind }

// NewArray allocates a fresh Array owning its own backing slice; builtins
// that "return a new array" must call this rather than wrap a slice that
// another Value's cell still owns.
func NewArray(items ...Value) Array {
	cell := &ArrayCell{Items: append([]Value(nil), items...)}
	return Array{Cell: cell}
}

// ObjectCell is the shared, mutable interior of an Object value. Keys is
// kept alongside Entries to preserve insertion order: Object is an
// insertion-ordered mapping.
type ObjectCell struct {
	Keys    []string
	Entries map[string]Value
}

type Object struct {
	Cell *ObjectCell
}

func (Object) Kind() Kind { return ObjectKind }

func NewObject() Object {
	return Object{Cell: &ObjectCell{Entries: map[string]Value{}}}
}

// Set inserts or overwrites key, preserving first-insertion order on
// overwrite: duplicate keys overwrite with the last value, but overwriting
// a value does not move it to the end.
func (o Object) Set(key string, v Value) {
	if _, exists := o.Cell.Entries[key]; !exists {
		o.Cell.Keys = append(o.Cell.Keys, key)
	}
	o.Cell.Entries[key] = v
}

func (o Object) Get(key string) (Value, bool) {
	v, ok := o.Cell.Entries[key]
	return v, ok
}

// Function is the captured descriptor of a user-defined function: params
// and body only, deliberately no captured environment — DataCode
// functions have no closures.
type Function struct {
	Name   string
	Params []string
	Body   []ast.Stmt
}

type FunctionValue struct {
	Descriptor *Function
}

func (FunctionValue) Kind() Kind { return FunctionKind }

// ---- construction helpers ----

func Bl(b bool) Value    { return Bool(b) }
func I(i int64) Value    { return Int(i) }
func R(f float64) Value  { return Real(f) }
func S(s string) Value   { return String(s) }
func Nul() Value         { return Null{} }
