// Package interp implements DataCode's tree-walking evaluator and the
// public core API consumed by the CLI, REPL and session server.
//
// Its shape follows vippsas/sqlcode's deployable.go: a single
// orchestration struct exposing the public operations (there,
// Deployable.Deploy/Doc; here, Interpreter.Exec/GetGlobal/SetGlobal)
// that internally drives the scope manager and a registry of named
// operations, the way Deployable drives its DB interface and the
// statement-kind dispatch in dbops.go.
package interp

import (
	"io/fs"
	"math/rand"
	"time"

	"github.com/golang-sql/civil"
	"github.com/sirupsen/logrus"

	"github.com/datacode-lang/datacode/builtins"
	"github.com/datacode-lang/datacode/interperr"
	"github.com/datacode-lang/datacode/parser"
	"github.com/datacode-lang/datacode/scope"
	"github.com/datacode-lang/datacode/value"
)

// Options configures an Interpreter, including its configurable
// recursion limit.
type Options struct {
	MaxCallDepth int
	File         string // name reported in positional diagnostics
	Log          *logrus.Logger
	Resolver     builtins.ShareResolver
	WorkDir      string // "" when --use-ve is set: getcwd() returns ""
	FS           fs.FS  // non-nil in --use-ve mode: backs read_file/list_files instead of WorkDir
}

// Interpreter is one independent evaluation context: single-threaded
// cooperative execution, no shared state across interpreter instances.
type Interpreter struct {
	opts     Options
	scope    *scope.Manager
	registry *builtins.Registry
	output    []string
	warnings  []string
	relations []builtins.Relation
	log       *logrus.Logger
}

// New creates a fresh interpreter with empty globals, equivalent to the
// public create_interpreter operation.
func New(opts Options) *Interpreter {
	if opts.Log == nil {
		opts.Log = logrus.New()
	}
	in := &Interpreter{
		opts:  opts,
		scope: scope.NewManager(opts.MaxCallDepth),
		log:   opts.Log,
	}
	in.registry = builtins.NewRegistry(builtins.Services{
		Print:          in.print,
		Warn:           in.warn,
		WorkDir:        opts.WorkDir,
		Resolver:       opts.Resolver,
		FS:             opts.FS,
		FindColumn:     in.findColumn,
		RecordRelation: in.recordRelation,
		Now:            func() value.Value { return value.Date{Date: civil.DateOf(time.Now())} },
		Rand:           rand.New(rand.NewSource(time.Now().UnixNano())),
	})
	return in
}

// findColumn and recordRelation back relate(); see
// builtins.Services for why FindColumn must scan globals rather than
// follow a back-pointer.
func (in *Interpreter) findColumn(col value.Value) (table, column string, ok bool) {
	arr, isArr := col.(value.Array)
	if !isArr {
		return "", "", false
	}
	for _, name := range in.scope.GlobalNames() {
		v, _ := in.scope.GetGlobal(name)
		t, isTable := v.(value.TableValue)
		if !isTable {
			continue
		}
		for _, c := range t.Ref.Columns {
			if len(c.Values) != len(arr.Cell.Items) {
				continue
			}
			match := true
			for i, item := range c.Values {
				if !value.Equal(item, arr.Cell.Items[i]) {
					match = false
					break
				}
			}
			if match {
				return name, c.Name, true
			}
		}
	}
	return "", "", false
}

func (in *Interpreter) recordRelation(rel builtins.Relation) {
	in.relations = append(in.relations, rel)
}

// Relations returns every relation recorded via relate(), for the SQLite
// exporter (§6.4). Auto-detected `*_id` links are not included; the
// exporter (dcexport.FromInterpreter) derives those itself.
func (in *Interpreter) Relations() []builtins.Relation {
	return append([]builtins.Relation(nil), in.relations...)
}

func (in *Interpreter) print(s string) {
	in.output = append(in.output, s)
}

func (in *Interpreter) warn(s string) {
	in.warnings = append(in.warnings, s)
	in.log.WithField("component", "interp").Warn(s)
}

// Exec parses and executes source under the file name given at
// construction. Parse failures and runtime errors both come back as
// *interperr.Error so the embedder can format them uniformly
// ("<Kind>: <message> (line N)").
func (in *Interpreter) Exec(source string) error {
	file := in.opts.File
	if file == "" {
		file = "<input>"
	}
	stmts, err := parser.Parse(file, source)
	if err != nil {
		return asInterpErr(err)
	}
	funcDepth, loopDepth := in.scope.StackSizes()
	if execErr := in.execBlock(stmts); execErr != nil {
		in.unwindTo(funcDepth, loopDepth)
		if rs, ok := execErr.(*returnSignal); ok {
			// A bare top-level `return expr` terminates the script with
			// that value; it is not itself an error.
			_ = rs
			return nil
		}
		return asInterpErr(execErr)
	}
	return nil
}

// unwindTo restores the scope manager's call/loop depth after an error,
// matching invariant 8.1.1: stack sizes return to their pre-execution
// sizes on every path, including error paths that unwound mid-frame.
func (in *Interpreter) unwindTo(funcDepth, loopDepth int) {
	for in.scope.FunctionDepth() > funcDepth {
		in.scope.PopCall()
	}
	for in.scope.LoopDepth() > loopDepth {
		in.scope.PopLoop()
	}
}

func asInterpErr(err error) *interperr.Error {
	if err == nil {
		return nil
	}
	if ie, ok := err.(*interperr.Error); ok {
		return ie
	}
	if pe, ok := err.(*parser.Error); ok {
		kind := interperr.ParseError
		if !pe.Structural {
			kind = interperr.SyntaxError
		}
		return interperr.New(kind, pe.Pos.Line, "%s", pe.Message)
	}
	return interperr.New(interperr.IOError, 0, "%s", err.Error())
}

// GetGlobal/SetGlobal/Reset implement the remaining §6.1 operations.
func (in *Interpreter) GetGlobal(name string) (value.Value, bool) {
	return in.scope.GetGlobal(name)
}

func (in *Interpreter) SetGlobal(name string, v value.Value) {
	in.scope.SetGlobal(name, v)
}

func (in *Interpreter) Reset() {
	in.scope.Reset()
	in.output = nil
	in.warnings = nil
}

// CaptureOutput returns every line `print` has emitted since the last
// drain, then clears the buffer.
func (in *Interpreter) CaptureOutput() []string {
	out := in.output
	in.output = nil
	return out
}

// Warnings returns diagnostics accumulated since the last drain (column
// heterogeneity, auto-generated headers, and similar non-fatal notices),
// then clears the buffer.
func (in *Interpreter) Warnings() []string {
	w := in.warnings
	in.warnings = nil
	return w
}

// Globals returns the names of every currently-bound global, used by the
// SQLite exporter (§6.4) to find Table-valued globals.
func (in *Interpreter) Globals() []string {
	return in.scope.GlobalNames()
}
