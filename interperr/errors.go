// Package interperr implements DataCode's runtime error taxonomy, following
// vippsas/sqlcode's SQLCodeParseErrors/SQLUserError pattern: a small Kind
// enum, a positional Error type rendering "<Kind>: <message> (line N)"
// text, and a catchable Payload carried for try/catch so `catch err` can
// inspect what went wrong.
package interperr

import "fmt"

// Kind enumerates the runtime error categories DataCode programs can raise
// or catch.
type Kind int

const (
	SyntaxError Kind = iota
	ParseError
	UndefinedVariable
	UndefinedFunction
	TypeError
	ArgumentError
	IndexError
	KeyError
	ScopeError
	DivisionByZero
	IOError
	UserError
)

var kindNames = map[Kind]string{
	SyntaxError:       "SyntaxError",
	ParseError:        "ParseError",
	UndefinedVariable: "UndefinedVariable",
	UndefinedFunction: "UndefinedFunction",
	TypeError:         "TypeError",
	ArgumentError:     "ArgumentError",
	IndexError:        "IndexError",
	KeyError:          "KeyError",
	ScopeError:        "ScopeError",
	DivisionByZero:    "DivisionByZero",
	IOError:           "IOError",
	UserError:         "UserError",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UnknownError"
}

// Error is the value every failing DataCode operation produces, and the
// value a `catch` clause binds. Payload carries
// whatever data the operation that raised it wants a catch block to see —
// for a `throw expr` statement, Payload is expr's value; for builtin
// failures, Payload is usually nil and Message alone describes the fault.
type Error struct {
	Kind    Kind
	Message string
	Line    int
	Payload interface{}
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: %s (line %d)", e.Kind, e.Message, e.Line)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New builds an Error with no payload, the common case for builtin
// validation failures.
func New(kind Kind, line int, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Line: line}
}

// Thrown builds the Error a `throw expr` statement raises, carrying expr's
// value as Payload so `catch err` can recover it.
func Thrown(line int, payload interface{}, message string) *Error {
	return &Error{Kind: UserError, Message: message, Line: line, Payload: payload}
}
