package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datacode-lang/datacode/interperr"
)

func run(t *testing.T, source string) (*Interpreter, error) {
	t.Helper()
	in := New(Options{File: "test.dc"})
	err := in.Exec(source)
	return in, err
}

func TestScenarioSumAndPrint(t *testing.T) {
	in, err := run(t, "global x = 10\nglobal y = 20\nprint('sum:', x + y)\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"sum: 30"}, in.CaptureOutput())
}

func TestScenarioArrayIndexing(t *testing.T) {
	in, err := run(t, "global arr = [1,2,3]\nprint(arr[0], arr[2])\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"1 3"}, in.CaptureOutput())
}

func TestScenarioRecursiveFunction(t *testing.T) {
	source := "global function fact(n) do\n" +
		"if n <= 1 do return 1 endif\n" +
		"return n * fact(n-1)\n" +
		"endfunction\n" +
		"print(fact(5))\n"
	in, err := run(t, source)
	require.NoError(t, err)
	assert.Equal(t, []string{"120"}, in.CaptureOutput())
}

func TestScenarioTryCatchBindsThrownValue(t *testing.T) {
	source := "try\n" +
		"throw 'boom'\n" +
		"catch e\n" +
		"print(e.kind, e.message)\n" +
		"endtry\n"
	in, err := run(t, source)
	require.NoError(t, err)
	assert.Equal(t, []string{"UserError boom"}, in.CaptureOutput())
}

func TestScenarioTableColumnIndexing(t *testing.T) {
	source := "global t = table([[1,'a'],[2,'b']], ['id','name'])\n" +
		"print(t['name'][1])\n"
	in, err := run(t, source)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, in.CaptureOutput())
}

func TestScenarioSortAndReverse(t *testing.T) {
	source := "global a = [3,1,2]\n" +
		"print(sort(a))\n" +
		"print(reverse(sort(a)))\n"
	in, err := run(t, source)
	require.NoError(t, err)
	assert.Equal(t, []string{"[1, 2, 3]", "[3, 2, 1]"}, in.CaptureOutput())
}

func TestNegativeUndefinedVariable(t *testing.T) {
	_, err := run(t, "print(undefined_var)\n")
	require.Error(t, err)
	ierr, ok := err.(*interperr.Error)
	require.True(t, ok)
	assert.Equal(t, interperr.UndefinedVariable, ierr.Kind)
	assert.Equal(t, 1, ierr.Line)
}

func TestNegativeDivisionByZero(t *testing.T) {
	_, err := run(t, "global x = 1/0\n")
	require.Error(t, err)
	ierr, ok := err.(*interperr.Error)
	require.True(t, ok)
	assert.Equal(t, interperr.DivisionByZero, ierr.Kind)
}

func TestNegativeTypeErrorOnStringPlusInt(t *testing.T) {
	_, err := run(t, "global x = 'a' + 1\n")
	require.Error(t, err)
	ierr, ok := err.(*interperr.Error)
	require.True(t, ok)
	assert.Equal(t, interperr.TypeError, ierr.Kind)
}

func TestNegativeForLoopLengthMismatch(t *testing.T) {
	_, err := run(t, "for x, y in [[1],[2,3]] do print(x,y) forend\n")
	require.Error(t, err)
	ierr, ok := err.(*interperr.Error)
	require.True(t, ok)
	assert.Equal(t, interperr.TypeError, ierr.Kind)
}

func TestForLoopRunsOncePerElementInOrder(t *testing.T) {
	in, err := run(t, "for x in [1,2,3] do print(x) forend\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, in.CaptureOutput())
}

func TestStackSizesRestoredAfterError(t *testing.T) {
	in := New(Options{File: "t.dc"})
	fd, ld := in.scope.StackSizes()
	err := in.Exec("global function f(n) do\nreturn n + 'x'\nendfunction\nf(1)\n")
	require.Error(t, err)
	fd2, ld2 := in.scope.StackSizes()
	assert.Equal(t, fd, fd2)
	assert.Equal(t, ld, ld2)
}

func TestFinallyRunsOnNormalCompletion(t *testing.T) {
	source := "try\nprint('a')\nfinally\nprint('b')\nendtry\n"
	in, err := run(t, source)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, in.CaptureOutput())
}

func TestFinallySupersedesCaughtException(t *testing.T) {
	source := "try\nthrow 'x'\ncatch e\nprint('caught')\nfinally\nthrow 'y'\nendtry\n"
	_, err := run(t, source)
	require.Error(t, err)
	ierr, ok := err.(*interperr.Error)
	require.True(t, ok)
	assert.Equal(t, "y", ierr.Message)
}
