// Package builtins implements DataCode's built-in function registry.
//
// Grounded on two vippsas/sqlcode idioms: the registry itself is a
// literal name->info map populated at construction time, the way
// sqlparser's scanner.go declares its reservedWords map; and categories
// are split one file per concern, the way cli/cmd/*.go splits one file
// per cobra subcommand, each registering itself rather than the registry
// knowing about every function inline.
package builtins

import (
	"fmt"
	"io/fs"
	"math/rand"

	"github.com/datacode-lang/datacode/pathglue"
	"github.com/datacode-lang/datacode/value"
)

// ShareResolver is re-exported from pathglue so callers configuring an
// Interpreter never need to import pathglue directly.
type ShareResolver = pathglue.ShareResolver

// Services are the interpreter collaborators a dispatcher may need beyond
// its already-evaluated arguments — a handle to interpreter services.
type Services struct {
	Print    func(string)
	Warn     func(string)
	WorkDir  string
	Resolver ShareResolver

	// FS overrides the local-file backend with an in-memory filesystem
	// (session virtual-environment mode, --use-ve): when set,
	// read_file/list_files resolve non-lib:// paths against FS instead of
	// os.DirFS(WorkDir).
	FS fs.FS

	// FindColumn and RecordRelation back relate(): FindColumn
	// recovers which global Table/column an Array value was read from (by
	// scanning globals, since an indexed-out column carries no back-pointer
	// of its own); RecordRelation stores the resulting link for the SQLite
	// exporter. Both are nil when the embedder has no exporter wired up.
	FindColumn     func(col value.Value) (table, column string, ok bool)
	RecordRelation func(Relation)

	Now func() value.Value // injected so now() stays deterministic under test

	// Rand backs table_sample(); injected the same way Now is, so tests can
	// seed it for a reproducible draw. Nil falls back to a fixed seed.
	Rand *rand.Rand
}

// Context is per-call information a dispatcher needs that isn't part of
// Services (bound once at registry construction) or args.
type Context struct {
	Line int
}

// Func is the dispatcher signature every builtin implements.
type Func func(ctx *Context, args []value.Value) (value.Value, error)

// FuncInfo is one registry entry.
type FuncInfo struct {
	Name     string
	Category string
	MinArgs  int
	MaxArgs  int // -1 means unbounded
	Fn       Func
}

// CheckArity validates n against the entry's arity bounds.
func (f FuncInfo) CheckArity(n int) error {
	if n < f.MinArgs || (f.MaxArgs >= 0 && n > f.MaxArgs) {
		if f.MaxArgs < 0 {
			return fmt.Errorf("expects at least %d argument(s), got %d", f.MinArgs, n)
		}
		if f.MinArgs == f.MaxArgs {
			return fmt.Errorf("expects %d argument(s), got %d", f.MinArgs, n)
		}
		return fmt.Errorf("expects %d-%d argument(s), got %d", f.MinArgs, f.MaxArgs, n)
	}
	return nil
}

// Registry is a read-only-after-construction name->info map, shared across
// calls rather than rebuilt per call. Each Interpreter builds its own (see
// NewRegistry).
type Registry struct {
	entries map[string]FuncInfo
}

// NewRegistry builds a Registry bound to one interpreter's Services. The
// registry itself holds no interpreter state; svc is captured by the
// closures each register* function installs.
func NewRegistry(svc Services) *Registry {
	r := &Registry{entries: map[string]FuncInfo{}}
	registerCore(r, svc)
	registerConversions(r, svc)
	registerMath(r, svc)
	registerString(r, svc)
	registerArray(r, svc)
	registerTable(r, svc)
	registerIO(r, svc)
	return r
}

func (r *Registry) add(name, category string, min, max int, fn Func) {
	r.entries[name] = FuncInfo{Name: name, Category: category, MinArgs: min, MaxArgs: max, Fn: fn}
}

func (r *Registry) Lookup(name string) (FuncInfo, bool) {
	info, ok := r.entries[name]
	return info, ok
}

// Names returns every registered builtin name, in no particular order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	return names
}
