package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datacode-lang/datacode/value"
)

func TestBindAndGetGlobal(t *testing.T) {
	m := NewManager(0)
	m.BindGlobal("x", value.Int(1))
	v, ok := m.Get("x")
	require.True(t, ok)
	assert.Equal(t, value.Int(1), v)
}

func TestLocalOutsideFunctionWritesGlobal(t *testing.T) {
	m := NewManager(0)
	m.BindLocal("x", value.Int(1))
	v, ok := m.GetGlobal("x")
	require.True(t, ok)
	assert.Equal(t, value.Int(1), v)
}

func TestLoopScopeShadowsGlobal(t *testing.T) {
	m := NewManager(0)
	m.BindGlobal("x", value.Int(1))
	m.PushLoop()
	m.BindLocal("x", value.Int(2))
	v, _ := m.Get("x")
	assert.Equal(t, value.Int(2), v)
	m.PopLoop()
	v, _ = m.Get("x")
	assert.Equal(t, value.Int(1), v)
}

func TestReassignRequiresExistingBinding(t *testing.T) {
	m := NewManager(0)
	err := m.Reassign("missing", value.Int(1))
	require.Error(t, err)
	var undef *ErrUndefined
	assert.ErrorAs(t, err, &undef)
}

func TestReassignFindsOuterScope(t *testing.T) {
	m := NewManager(0)
	m.BindGlobal("x", value.Int(1))
	m.PushLoop()
	require.NoError(t, m.Reassign("x", value.Int(9)))
	m.PopLoop()
	v, _ := m.GetGlobal("x")
	assert.Equal(t, value.Int(9), v)
}

func TestCallFrameIsolatesFromOuterLoopScope(t *testing.T) {
	m := NewManager(0)
	m.PushLoop()
	m.BindLocal("loopvar", value.Int(1))
	require.NoError(t, m.PushCall("f"))
	_, ok := m.Get("loopvar")
	assert.False(t, ok, "function call frames must not see the caller's loop scope (no closures)")
	m.PopCall()
	m.PopLoop()
}

func TestCallFrameSeesGlobals(t *testing.T) {
	m := NewManager(0)
	m.BindGlobal("g", value.Int(5))
	require.NoError(t, m.PushCall("f"))
	v, ok := m.Get("g")
	assert.True(t, ok)
	assert.Equal(t, value.Int(5), v)
	m.PopCall()
}

func TestPushPopCallRestoresDepth(t *testing.T) {
	m := NewManager(0)
	require.NoError(t, m.PushCall("f"))
	m.PushLoop()
	m.PushLoop()
	assert.Equal(t, 1, m.FunctionDepth())
	assert.Equal(t, 2, m.LoopDepth())
	m.PopCall()
	assert.Equal(t, 0, m.FunctionDepth())
	assert.Equal(t, 0, m.LoopDepth())
}

func TestRecursionLimitEnforced(t *testing.T) {
	m := NewManager(2)
	require.NoError(t, m.PushCall("a"))
	require.NoError(t, m.PushCall("b"))
	err := m.PushCall("c")
	require.Error(t, err)
	var limit *ErrRecursionLimit
	require.ErrorAs(t, err, &limit)
	assert.Equal(t, 2, limit.Limit)
}

func TestResetClearsGlobalsAndStacks(t *testing.T) {
	m := NewManager(0)
	m.BindGlobal("x", value.Int(1))
	require.NoError(t, m.PushCall("f"))
	m.PushLoop()
	m.Reset()
	_, ok := m.GetGlobal("x")
	assert.False(t, ok)
	assert.Equal(t, 0, m.FunctionDepth())
	assert.Equal(t, 0, m.LoopDepth())
}
