package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datacode-lang/datacode/ast"
)

func TestParseSimpleAssignAndPrint(t *testing.T) {
	stmts, err := Parse("t.dc", "global x = 10\nprint(x)")
	require.NoError(t, err)
	require.Len(t, stmts, 2)

	assign, ok := stmts[0].(*ast.AssignStmt)
	require.True(t, ok)
	assert.Equal(t, "x", assign.Name)

	exprStmt, ok := stmts[1].(*ast.ExprStmt)
	require.True(t, ok)
	call, ok := exprStmt.X.(*ast.CallExpr)
	require.True(t, ok)
	assert.Equal(t, "print", call.Callee)
}

func TestParseIfElse(t *testing.T) {
	src := "if x do\nglobal y = 1\nelse\nglobal y = 2\nendif"
	stmts, err := Parse("t.dc", src)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	ifStmt, ok := stmts[0].(*ast.IfStmt)
	require.True(t, ok)
	assert.Len(t, ifStmt.Then, 1)
	assert.Len(t, ifStmt.Else, 1)
}

func TestParseForWithForend(t *testing.T) {
	stmts, err := Parse("t.dc", "for x in arr do\nprint(x)\nforend")
	require.NoError(t, err)
	forStmt := stmts[0].(*ast.ForStmt)
	assert.Equal(t, []string{"x"}, forStmt.Vars)
	assert.False(t, forStmt.UsedNext)
}

func TestParseForWithNextMismatchFails(t *testing.T) {
	_, err := Parse("t.dc", "for x in arr do\nprint(x)\nnext y")
	require.Error(t, err)
}

func TestParseFunctionDefAndRecursiveCall(t *testing.T) {
	src := "global function fact(n) do\nif n <= 1 do\nreturn 1\nendif\nreturn n * fact(n-1)\nendfunction"
	stmts, err := Parse("t.dc", src)
	require.NoError(t, err)
	fn := stmts[0].(*ast.FuncDefStmt)
	assert.Equal(t, "fact", fn.Name)
	assert.Equal(t, []string{"n"}, fn.Params)
}

func TestParseTryCatchFinally(t *testing.T) {
	src := "try\nthrow 'boom'\ncatch e\nprint(e.kind)\nfinally\nprint('done')\nendtry"
	stmts, err := Parse("t.dc", src)
	require.NoError(t, err)
	tryStmt := stmts[0].(*ast.TryStmt)
	require.NotNil(t, tryStmt.Catch)
	assert.Equal(t, "e", tryStmt.Catch.Name)
	require.NotNil(t, tryStmt.Finally)
}

func TestParseOperatorPrecedence(t *testing.T) {
	stmts, err := Parse("t.dc", "global x = 1 + 2 * 3 == 7 and not false")
	require.NoError(t, err)
	assign := stmts[0].(*ast.AssignStmt)
	logical, ok := assign.Value.(*ast.LogicalExpr)
	require.True(t, ok)
	_, ok = logical.Left.(*ast.BinaryExpr)
	require.True(t, ok)
}

func TestParseArrayAndObjectLiterals(t *testing.T) {
	stmts, err := Parse("t.dc", "global a = [1, 2, 3,]\nglobal o = {x: 1, 'y': 2}")
	require.NoError(t, err)
	arr := stmts[0].(*ast.AssignStmt).Value.(*ast.ArrayLit)
	assert.Len(t, arr.Elements, 3)
	obj := stmts[1].(*ast.AssignStmt).Value.(*ast.ObjectLit)
	assert.Len(t, obj.Entries, 2)
}

func TestParseUnbalancedBlockIsError(t *testing.T) {
	_, err := Parse("t.dc", "if x do\nprint(x)\n")
	require.Error(t, err)
}
