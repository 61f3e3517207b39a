package builtins

import "github.com/datacode-lang/datacode/interperr"

// divisionByZero lets a dispatcher raise the specific taxonomy kind
// instead of falling back to the generic ArgumentError the evaluator
// wraps plain errors in.
func divisionByZero(ctx *Context) error {
	return interperr.New(interperr.DivisionByZero, ctx.Line, "division by zero")
}

func typeError(ctx *Context, format string, args ...interface{}) error {
	return interperr.New(interperr.TypeError, ctx.Line, format, args...)
}

func indexError(ctx *Context, format string, args ...interface{}) error {
	return interperr.New(interperr.IndexError, ctx.Line, format, args...)
}

func ioError(ctx *Context, format string, args ...interface{}) error {
	return interperr.New(interperr.IOError, ctx.Line, format, args...)
}
