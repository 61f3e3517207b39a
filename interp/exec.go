package interp

import (
	"fmt"

	"github.com/datacode-lang/datacode/ast"
	"github.com/datacode-lang/datacode/builtins"
	"github.com/datacode-lang/datacode/interperr"
	"github.com/datacode-lang/datacode/pathglue"
	"github.com/datacode-lang/datacode/token"
	"github.com/datacode-lang/datacode/value"
)

// returnSignal unwinds the current call frame (or, at top level, halts
// script execution) with a value from a `return expr?` statement. It is
// never shown to user code — callUserFunction strips it back into a plain value,
// and Exec strips it at the top level.
type returnSignal struct {
	Value value.Value
}

func (r *returnSignal) Error() string { return "return" }

func (in *Interpreter) execBlock(stmts []ast.Stmt) error {
	for _, s := range stmts {
		if err := in.execStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) execStmt(s ast.Stmt) error {
	switch st := s.(type) {
	case *ast.AssignStmt:
		v, err := in.evalExpr(st.Value)
		if err != nil {
			return err
		}
		switch st.Qualifier {
		case token.GLOBAL:
			in.scope.BindGlobal(st.Name, v)
		case token.LOCAL:
			in.scope.BindLocal(st.Name, v)
		default:
			if err := in.scope.Reassign(st.Name, v); err != nil {
				return interperr.New(interperr.UndefinedVariable, st.Pos.Line, "%s", st.Name)
			}
		}
		return nil

	case *ast.ExprStmt:
		_, err := in.evalExpr(st.X)
		return err

	case *ast.IfStmt:
		cond, err := in.evalExpr(st.Cond)
		if err != nil {
			return err
		}
		if value.Truthy(cond) {
			return in.execBlock(st.Then)
		}
		if st.Else != nil {
			return in.execBlock(st.Else)
		}
		return nil

	case *ast.ForStmt:
		return in.execFor(st)

	case *ast.FuncDefStmt:
		fn := value.FunctionValue{Descriptor: &value.Function{
			Name:   st.Name,
			Params: st.Params,
			Body:   st.Body,
		}}
		if st.Qualifier == token.LOCAL {
			in.scope.BindLocal(st.Name, fn)
		} else {
			in.scope.BindGlobal(st.Name, fn)
		}
		return nil

	case *ast.ReturnStmt:
		var v value.Value = value.Null{}
		if st.Value != nil {
			ev, err := in.evalExpr(st.Value)
			if err != nil {
				return err
			}
			v = ev
		}
		return &returnSignal{Value: v}

	case *ast.ThrowStmt:
		v, err := in.evalExpr(st.Value)
		if err != nil {
			return err
		}
		return interperr.Thrown(st.Pos.Line, v, value.Str(v))

	case *ast.TryStmt:
		return in.execTry(st)
	}
	return interperr.New(interperr.ParseError, s.Position().Line, "unhandled statement kind")
}

func (in *Interpreter) execFor(st *ast.ForStmt) error {
	iterVal, err := in.evalExpr(st.Iter)
	if err != nil {
		return err
	}
	elems, err := iterableElements(iterVal)
	if err != nil {
		return interperr.New(interperr.TypeError, st.Pos.Line, "%s", err.Error())
	}
	for _, elem := range elems {
		if err := in.bindForVars(st, elem); err != nil {
			return err
		}
		in.scope.PushLoop()
		if len(st.Vars) == 1 {
			in.scope.BindLocal(st.Vars[0], elem)
		} else {
			arr := elem.(value.Array)
			for i, name := range st.Vars {
				in.scope.BindLocal(name, arr.Cell.Items[i])
			}
		}
		err := in.execBlock(st.Body)
		in.scope.PopLoop()
		if err != nil {
			return err
		}
	}
	return nil
}

// bindForVars validates the shape of elem against st.Vars before binding:
// multi-name for-loops require each element to be an Array of matching
// length, else TypeError.
func (in *Interpreter) bindForVars(st *ast.ForStmt, elem value.Value) error {
	if len(st.Vars) == 1 {
		return nil
	}
	arr, ok := elem.(value.Array)
	if !ok || len(arr.Cell.Items) != len(st.Vars) {
		return interperr.New(interperr.TypeError, st.Pos.Line,
			"for-loop element does not match %d loop variables", len(st.Vars))
	}
	return nil
}

// iterableElements expands an iterable Value into the sequence a for-loop
// walks: Array elements, Table rows (as Objects), Object values in
// insertion order, or String characters.
func iterableElements(v value.Value) ([]value.Value, error) {
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

// execTry implements try/catch/finally unwinding: the finally block
// always runs, and its own error or return supersedes whatever was
// pending from try/catch.
func (in *Interpreter) execTry(st *ast.TryStmt) error {
	result := in.execBlock(st.Try)

	if ierr, ok := result.(*interperr.Error); ok && st.Catch != nil {
		in.scope.PushLoop()
		if st.Catch.Name != "" {
			in.scope.BindLocal(st.Catch.Name, errorObject(ierr))
		}
		result = in.execBlock(st.Catch.Body)
		in.scope.PopLoop()
	}

	if st.Finally != nil {
		if ferr := in.execBlock(st.Finally); ferr != nil {
			return ferr
		}
	}
	return result
}

// errorObject builds the Object a `catch name` clause binds:
// { kind, message, line, value }.
func errorObject(e *interperr.Error) value.Object {
	obj := value.NewObject()
	obj.Set("kind", value.String(e.Kind.String()))
	obj.Set("message", value.String(e.Message))
	obj.Set("line", value.Int(int64(e.Line)))
	var payload value.Value = value.Null{}
	if v, ok := e.Payload.(value.Value); ok {
		payload = v
	}
	obj.Set("value", payload)
	return obj
}

// ---- expressions ----

func (in *Interpreter) evalExpr(e ast.Expr) (value.Value, error) {
	switch x := e.(type) {
	case *ast.NullLit:
		return value.Null{}, nil
	case *ast.BoolLit:
		return value.Bool(x.Value), nil
	case *ast.IntLit:
		return value.Int(x.Value), nil
	case *ast.RealLit:
		return value.Real(x.Value), nil
	case *ast.StringLit:
		return value.String(x.Value), nil

	case *ast.Ident:
		v, ok := in.scope.Get(x.Name)
		if !ok {
			return nil, interperr.New(interperr.UndefinedVariable, x.Pos.Line, "%s", x.Name)
		}
		return v, nil

	case *ast.ArrayLit:
		items := make([]value.Value, len(x.Elements))
		for i, el := range x.Elements {
			v, err := in.evalExpr(el)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return value.NewArray(items...), nil

	case *ast.ObjectLit:
		obj := value.NewObject()
		for _, entry := range x.Entries {
			v, err := in.evalExpr(entry.Value)
			if err != nil {
				return nil, err
			}
			obj.Set(entry.Key, v)
		}
		return obj, nil

	case *ast.UnaryExpr:
		return in.evalUnary(x)

	case *ast.BinaryExpr:
		return in.evalBinary(x)

	case *ast.LogicalExpr:
		return in.evalLogical(x)

	case *ast.IndexExpr:
		return in.evalIndex(x)

	case *ast.FieldExpr:
		return in.evalField(x)

	case *ast.CallExpr:
		return in.evalCall(x)
	}
	return nil, fmt.Errorf("unhandled expression kind %T", e)
}

func (in *Interpreter) evalUnary(x *ast.UnaryExpr) (value.Value, error) {
	v, err := in.evalExpr(x.X)
	if err != nil {
		return nil, err
	}
	switch x.Op {
	case token.NOT:
		return value.Bool(!value.Truthy(v)), nil
	case token.MINUS:
		switch n := v.(type) {
		case value.Int:
			return value.Int(-n), nil
		case value.Real:
			return value.Real(-n), nil
		}
		return nil, interperr.New(interperr.TypeError, x.Pos.Line, "unary - requires a number, got %s", value.TypeName(v))
	}
	return nil, interperr.New(interperr.ParseError, x.Pos.Line, "unhandled unary operator")
}

func (in *Interpreter) evalLogical(x *ast.LogicalExpr) (value.Value, error) {
	left, err := in.evalExpr(x.Left)
	if err != nil {
		return nil, err
	}
	switch x.Op {
	case token.AND:
		if !value.Truthy(left) {
			return value.Bool(false), nil
		}
	case token.OR:
		if value.Truthy(left) {
			return value.Bool(true), nil
		}
	}
	right, err := in.evalExpr(x.Right)
	if err != nil {
		return nil, err
	}
	return value.Bool(value.Truthy(right)), nil
}

func (in *Interpreter) evalBinary(x *ast.BinaryExpr) (value.Value, error) {
	left, err := in.evalExpr(x.Left)
	if err != nil {
		return nil, err
	}
	right, err := in.evalExpr(x.Right)
	if err != nil {
		return nil, err
	}
	line := x.Pos.Line

	switch x.Op {
	case token.EQ:
		return value.Bool(value.Equal(left, right)), nil
	case token.NEQ:
		return value.Bool(!value.Equal(left, right)), nil
	case token.LT, token.GT, token.LE, token.GE:
		less, err := value.Less(left, right)
		if err != nil {
			return nil, interperr.New(interperr.TypeError, line, "%s", err.Error())
		}
		eq := value.Equal(left, right)
		switch x.Op {
		case token.LT:
			return value.Bool(less), nil
		case token.GT:
			return value.Bool(!less && !eq), nil
		case token.LE:
			return value.Bool(less || eq), nil
		default: // GE
			return value.Bool(!less), nil
		}
	case token.PLUS:
		return in.evalPlus(left, right, line)
	case token.MINUS:
		return arith(left, right, line, func(a, b float64) float64 { return a - b },
			func(a, b int64) int64 { return a - b })
	case token.STAR:
		if arr, ok := left.(value.Array); ok {
			if n, ok := right.(value.Int); ok {
				return repeatArray(arr, int(n)), nil
			}
		}
		return arith(left, right, line, func(a, b float64) float64 { return a * b },
			func(a, b int64) int64 { return a * b })
	case token.SLASH:
		return in.evalSlash(left, right, line)
	}
	return nil, interperr.New(interperr.ParseError, line, "unhandled binary operator")
}

func (in *Interpreter) evalPlus(left, right value.Value, line int) (value.Value, error) {
	if ls, ok := left.(value.String); ok {
		if rs, ok := right.(value.String); ok {
			return value.String(string(ls) + string(rs)), nil
		}
	}
	if la, ok := left.(value.Array); ok {
		if ra, ok := right.(value.Array); ok {
			items := append(append([]value.Value(nil), la.Cell.Items...), ra.Cell.Items...)
			return value.NewArray(items...), nil
		}
	}
	return arith(left, right, line, func(a, b float64) float64 { return a + b },
		func(a, b int64) int64 { return a + b })
}

func repeatArray(a value.Array, n int) value.Array {
	if n < 0 {
		n = 0
	}
	items := make([]value.Value, 0, len(a.Cell.Items)*n)
	for i := 0; i < n; i++ {
		items = append(items, a.Cell.Items...)
	}
	return value.NewArray(items...)
}

// arith implements numeric promotion: Int op Int stays Int; any Real
// operand promotes the result to Real.
func arith(left, right value.Value, line int, realOp func(a, b float64) float64, intOp func(a, b int64) int64) (value.Value, error) {
	li, liOK := left.(value.Int)
	ri, riOK := right.(value.Int)
	if liOK && riOK {
		return value.Int(intOp(int64(li), int64(ri))), nil
	}
	lf, lfOK := asNumber(left)
	rf, rfOK := asNumber(right)
	if lfOK && rfOK {
		return value.Real(realOp(lf, rf)), nil
	}
	return nil, interperr.New(interperr.TypeError, line,
		"unsupported operand types %s and %s", value.TypeName(left), value.TypeName(right))
}

func asNumber(v value.Value) (float64, bool) {
	switch x := v.(type) {
	case value.Int:
		return float64(x), true
	case value.Real:
		return float64(x), true
	}
	return 0, false
}

func (in *Interpreter) evalSlash(left, right value.Value, line int) (value.Value, error) {
	if lp, ok := left.(value.Path); ok {
		if rs, ok := right.(value.String); ok {
			return value.Path{Raw: pathglue.Join(lp.Raw, string(rs))}, nil
		}
		return nil, interperr.New(interperr.TypeError, line, "path join requires a String right operand")
	}
	lf, lfOK := asNumber(left)
	rf, rfOK := asNumber(right)
	if !lfOK || !rfOK {
		return nil, interperr.New(interperr.TypeError, line,
			"unsupported operand types %s and %s", value.TypeName(left), value.TypeName(right))
	}
	if rf == 0 {
		return nil, interperr.New(interperr.DivisionByZero, line, "division by zero")
	}
	_, liOK := left.(value.Int)
	_, riOK := right.(value.Int)
	if liOK && riOK && int64(lf)%int64(rf) == 0 {
		return value.Int(int64(lf) / int64(rf)), nil
	}
	return value.Real(lf / rf), nil
}

func (in *Interpreter) evalIndex(x *ast.IndexExpr) (value.Value, error) {
	base, err := in.evalExpr(x.X)
	if err != nil {
		return nil, err
	}
	idx, err := in.evalExpr(x.Index)
	if err != nil {
		return nil, err
	}
	line := x.Pos.Line
	switch b := base.(type) {
	case value.Array:
		i, ok := idx.(value.Int)
		if !ok {
			return nil, interperr.New(interperr.TypeError, line, "array index must be an int")
		}
		if int(i) < 0 || int(i) >= len(b.Cell.Items) {
			return nil, interperr.New(interperr.IndexError, line, "array index %d out of range", i)
		}
		return b.Cell.Items[i], nil
	case value.String:
		i, ok := idx.(value.Int)
		if !ok {
			return nil, interperr.New(interperr.TypeError, line, "string index must be an int")
		}
		runes := []rune(string(b))
		if int(i) < 0 || int(i) >= len(runes) {
			return nil, interperr.New(interperr.IndexError, line, "string index %d out of range", i)
		}
		return value.String(string(runes[i])), nil
	case value.Object:
		key, ok := idx.(value.String)
		if !ok {
			return nil, interperr.New(interperr.TypeError, line, "object index must be a string")
		}
		v, ok := b.Get(string(key))
		if !ok {
			return nil, interperr.New(interperr.KeyError, line, "%s", string(key))
		}
		return v, nil
	case value.TableValue:
		key, ok := idx.(value.String)
		if !ok {
			return nil, interperr.New(interperr.TypeError, line, "table index must be a string column name")
		}
		col, ok := b.Ref.Column(string(key))
		if !ok {
			return nil, interperr.New(interperr.KeyError, line, "%s", string(key))
		}
		return value.NewArray(col.Values...), nil
	}
	return nil, interperr.New(interperr.TypeError, line, "value of type %s is not indexable", value.TypeName(base))
}

func (in *Interpreter) evalField(x *ast.FieldExpr) (value.Value, error) {
	base, err := in.evalExpr(x.X)
	if err != nil {
		return nil, err
	}
	line := x.Pos.Line
	switch b := base.(type) {
	case value.Object:
		v, ok := b.Get(x.Field)
		if !ok {
			return nil, interperr.New(interperr.KeyError, line, "%s", x.Field)
		}
		return v, nil
	case value.TableValue:
		col, ok := b.Ref.Column(x.Field)
		if !ok {
			return nil, interperr.New(interperr.KeyError, line, "%s", x.Field)
		}
		return value.NewArray(col.Values...), nil
	}
	return nil, interperr.New(interperr.TypeError, line, "value of type %s has no field access", value.TypeName(base))
}

func (in *Interpreter) evalCall(x *ast.CallExpr) (value.Value, error) {
	args := make([]value.Value, len(x.Args))
	for i, a := range x.Args {
		v, err := in.evalExpr(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	line := x.Pos.Line

	if info, ok := in.registry.Lookup(x.Callee); ok {
		if err := info.CheckArity(len(args)); err != nil {
			return nil, interperr.New(interperr.ArgumentError, line, "%s: %s", x.Callee, err.Error())
		}
		v, err := info.Fn(&builtins.Context{Line: line}, args)
		if err != nil {
			if ie, ok := err.(*interperr.Error); ok {
				return nil, ie
			}
			return nil, interperr.New(interperr.ArgumentError, line, "%s: %s", x.Callee, err.Error())
		}
		return v, nil
	}

	fnVal, ok := in.scope.Get(x.Callee)
	if !ok {
		return nil, interperr.New(interperr.UndefinedFunction, line, "%s", x.Callee)
	}
	fn, ok := fnVal.(value.FunctionValue)
	if !ok {
		return nil, interperr.New(interperr.TypeError, line, "%s is not callable", x.Callee)
	}
	return in.callUserFunction(fn.Descriptor, args, line)
}

func (in *Interpreter) callUserFunction(fn *value.Function, args []value.Value, line int) (value.Value, error) {
	if len(args) != len(fn.Params) {
		return nil, interperr.New(interperr.ArgumentError, line,
			"%s expects %d argument(s), got %d", fn.Name, len(fn.Params), len(args))
	}
	if err := in.scope.PushCall(fn.Name); err != nil {
		return nil, interperr.New(interperr.ScopeError, line, "%s", err.Error())
	}
	defer in.scope.PopCall()

	for i, p := range fn.Params {
		in.scope.BindLocal(p, args[i])
	}
	err := in.execBlock(fn.Body)
	if err == nil {
		return value.Null{}, nil
	}
	if rs, ok := err.(*returnSignal); ok {
		return rs.Value, nil
	}
	return nil, err
}
