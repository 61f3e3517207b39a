// Package scope implements DataCode's variable manager: a single global
// frame plus a stack of call frames, each of which may have nested
// lexical scopes pushed for for-loop bodies.
//
// The push/pop-stack shape mirrors the accumulate-and-unwind style used
// throughout vippsas/sqlcode's Document/Batch bookkeeping (append-only
// slices manipulated through small, single-purpose methods) rather than
// introducing a parent-linked scope-object graph; DataCode has no
// closures, so a flat stack of scopes, sliced at each call frame's
// boundary, is sufficient and keeps push/pop O(1).
package scope

import "github.com/datacode-lang/datacode/value"

// ErrRecursionLimit is returned by PushCall when entering a new call frame
// would exceed the configured maximum call depth.
type ErrRecursionLimit struct {
	Limit int
}

func (e *ErrRecursionLimit) Error() string {
	return "recursion limit exceeded"
}

// ErrUndefined is returned by Get/Reassign when name has no binding.
type ErrUndefined struct {
	Name string
}

func (e *ErrUndefined) Error() string {
	return "undefined variable: " + e.Name
}

// DefaultMaxCallDepth is sized to fit a typical thread stack with safety
// margin: each DataCode call costs a handful of Go stack frames in the
// tree-walking evaluator (evalCall, callUserFunction, execBlock, ...), and
// 2000 calls comfortably fit inside Go's
// default 1GB max stack even with generous per-frame evaluator state.
const DefaultMaxCallDepth = 2000

// Manager is the scope stack for one interpreter.
//
// scopes is a single stack of lexical scopes: the base scope of whichever
// call frame is active (or, at top level, the implicit top-level frame),
// followed by one scope per nested for-loop. callBase records, for each
// active call frame, the index into scopes where that frame's own scopes
// begin — Get/Reassign/BindLocal never search below the current frame's
// callBase, which is what keeps user functions closure-free: a nested call
// starts a fresh scope run and cannot see the caller's loop variables.
type Manager struct {
	global       map[string]value.Value
	scopes       []map[string]value.Value
	callBase     []int
	maxCallDepth int
}

func NewManager(maxCallDepth int) *Manager {
	if maxCallDepth <= 0 {
		maxCallDepth = DefaultMaxCallDepth
	}
	return &Manager{
		global:       map[string]value.Value{},
		maxCallDepth: maxCallDepth,
	}
}

// frameFloor returns the index into scopes where the current frame's own
// scopes start (0 at top level).
func (m *Manager) frameFloor() int {
	if len(m.callBase) == 0 {
		return 0
	}
	return m.callBase[len(m.callBase)-1]
}

// PushCall enters a user function's call frame. Every PushCall must be
// matched by exactly one PopCall, including on error/unwind paths;
// callers use defer to guarantee this.
func (m *Manager) PushCall(name string) error {
	if len(m.callBase) >= m.maxCallDepth {
		return &ErrRecursionLimit{Limit: m.maxCallDepth}
	}
	m.callBase = append(m.callBase, len(m.scopes))
	m.scopes = append(m.scopes, map[string]value.Value{})
	return nil
}

// PopCall discards every scope the call frame pushed, including any
// for-loop scopes left unpopped by an error unwinding through them.
func (m *Manager) PopCall() {
	base := m.callBase[len(m.callBase)-1]
	m.scopes = m.scopes[:base]
	m.callBase = m.callBase[:len(m.callBase)-1]
}

// PushLoop enters a for-loop body scope, nested inside the current call
// frame (or the implicit top-level frame).
func (m *Manager) PushLoop() {
	m.scopes = append(m.scopes, map[string]value.Value{})
}

func (m *Manager) PopLoop() {
	m.scopes = m.scopes[:len(m.scopes)-1]
}

// BindGlobal writes to the global frame (a `global name = expr` statement).
func (m *Manager) BindGlobal(name string, v value.Value) {
	m.global[name] = v
}

// BindLocal writes to the innermost scope of the current call frame. At
// top level it writes to the innermost loop (or catch) scope when one is
// active, and to the global frame otherwise (a `local name = expr`
// statement outside any function and loop).
func (m *Manager) BindLocal(name string, v value.Value) {
	if len(m.scopes) == m.frameFloor() {
		// No scope has been pushed for the current (possibly implicit
		// top-level) frame yet — fall back to globals, matching "outside a
		// function it writes to the global frame".
		if len(m.callBase) == 0 {
			m.global[name] = v
			return
		}
	}
	if len(m.scopes) == 0 {
		m.global[name] = v
		return
	}
	m.scopes[len(m.scopes)-1][name] = v
}

// Reassign locates the nearest existing binding (innermost scope of the
// current call frame outward to globals) and overwrites it in place.
// Returns ErrUndefined if no binding exists anywhere.
func (m *Manager) Reassign(name string, v value.Value) error {
	floor := m.frameFloor()
	for i := len(m.scopes) - 1; i >= floor; i-- {
		if _, ok := m.scopes[i][name]; ok {
			m.scopes[i][name] = v
			return nil
		}
	}
	if _, ok := m.global[name]; ok {
		m.global[name] = v
		return nil
	}
	return &ErrUndefined{Name: name}
}

// Get reads name using the same lookup order as Reassign.
func (m *Manager) Get(name string) (value.Value, bool) {
	floor := m.frameFloor()
	for i := len(m.scopes) - 1; i >= floor; i-- {
		if v, ok := m.scopes[i][name]; ok {
			return v, true
		}
	}
	if v, ok := m.global[name]; ok {
		return v, true
	}
	return nil, false
}

// SetGlobal/GetGlobal implement the public API independent of any active
// call frame.
func (m *Manager) SetGlobal(name string, v value.Value) {
	m.global[name] = v
}

func (m *Manager) GetGlobal(name string) (value.Value, bool) {
	v, ok := m.global[name]
	return v, ok
}

// GlobalNames returns the names currently bound in the global frame, in no
// particular order; used by the SQLite exporter to enumerate Table-valued
// globals.
func (m *Manager) GlobalNames() []string {
	names := make([]string, 0, len(m.global))
	for name := range m.global {
		names = append(names, name)
	}
	return names
}

// Reset clears all global bindings, matching the public reset() operation:
// it clears non-builtin global state. Builtins live in a separate,
// read-only registry, so resetting globals is sufficient.
func (m *Manager) Reset() {
	m.global = map[string]value.Value{}
	m.scopes = nil
	m.callBase = nil
}

// FunctionDepth returns the number of active user-function call frames.
func (m *Manager) FunctionDepth() int {
	return len(m.callBase)
}

// LoopDepth returns the number of nested for-loop scopes active in the
// current call frame (or at top level).
func (m *Manager) LoopDepth() int {
	return len(m.scopes) - m.frameFloor()
}

// StackSizes reports (function depth, loop depth), used by tests asserting
// that stack sizes are restored after every execution path, success or
// error.
func (m *Manager) StackSizes() (functionDepth, loopDepth int) {
	return m.FunctionDepth(), m.LoopDepth()
}
