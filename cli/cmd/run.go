package cmd

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/alecthomas/repr"
	"github.com/spf13/cobra"

	"github.com/datacode-lang/datacode/dcexport"
	"github.com/datacode-lang/datacode/interp"
	"github.com/datacode-lang/datacode/lexer"
	"github.com/datacode-lang/datacode/parser"
	"github.com/datacode-lang/datacode/token"
)

const demoScript = `global function greet(name) do
  return 'hello, ' + name
endfunction
global people = ['ada', 'grace', 'margaret']
for p in people do
  print(greet(p))
forend
global t = table([[1, 'widget', 9.99], [2, 'gadget', 19.5]], ['id', 'name', 'price'])
print(table_info(t))
`

func runRoot(c *cobra.Command, args []string) error {
	cfg, err := LoadConfig(".")
	if err != nil {
		return err
	}

	if websocket {
		return runServe(cfg)
	}

	in := newInterpreter(cfg)

	switch {
	case demo:
		if err := execAndReport(in, demoScript, "<demo>"); err != nil {
			return err
		}
	case len(args) == 1:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		if err := execAndReport(in, string(data), args[0]); err != nil {
			return err
		}
	default:
		if err := runREPL(in); err != nil {
			return err
		}
	}

	if buildModel != "" {
		return exportModel(in, buildModel)
	}
	return nil
}

func newInterpreter(cfg Config) *interp.Interpreter {
	return newInterpreterWithVFS(cfg, nil)
}

// newInterpreterWithVFS builds an Interpreter whose file builtins read
// from vfs (virtual-environment mode) or from the process's working
// directory (vfs == nil).
func newInterpreterWithVFS(cfg Config, vfs fs.FS) *interp.Interpreter {
	opts := interp.Options{
		File:         "<input>",
		Log:          log,
		MaxCallDepth: maxCallDepth,
	}
	if opts.MaxCallDepth == 0 {
		opts.MaxCallDepth = cfg.MaxCallDepth
	}
	if vfs != nil {
		opts.FS = vfs
	} else if !useVE && !cfg.UseVE {
		wd, _ := os.Getwd()
		opts.WorkDir = wd
	}
	return interp.New(opts)
}

func execAndReport(in *interp.Interpreter, source, file string) error {
	if dumpAST {
		stmts, err := parser.Parse(file, source)
		if err != nil {
			return err
		}
		repr.Println(stmts)
	}
	err := in.Exec(source)
	for _, line := range in.CaptureOutput() {
		fmt.Println(line)
	}
	for _, w := range in.Warnings() {
		log.WithField("component", "datacode").Warn(w)
	}
	return err
}

// runREPL implements --repl, the default mode: line-oriented input with
// multiline continuation so `if`/`for`/`function`/`try` blocks can be
// typed across several lines before they execute.
func runREPL(in *interp.Interpreter) error {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("datacode REPL. Ctrl-D to exit.")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		buf := scanner.Text()
		for blockDepth(buf) > 0 {
			fmt.Print(". ")
			if !scanner.Scan() {
				return scanner.Err()
			}
			buf += "\n" + scanner.Text()
		}
		if strings.TrimSpace(buf) == "" {
			continue
		}
		if err := execAndReport(in, buf, "<repl>"); err != nil {
			fmt.Println(err.Error())
		}
	}
}

// blockDepth tokenizes buf and returns how many block openers (if/for/
// function/try) remain unmatched by a closer (endif/forend/endfunction/
// endtry); a malformed/unlexable buffer is treated as depth 0 so the REPL
// never hangs waiting for input that will never balance.
func blockDepth(buf string) int {
	toks, err := lexer.Tokenize("<repl>", buf)
	if err != nil {
		return 0
	}
	depth := 0
	for _, t := range toks {
		switch t.Kind {
		case token.IF, token.FOR, token.FUNCTION, token.TRY:
			depth++
		case token.ENDIF, token.FOREND, token.ENDFUNCTION, token.ENDTRY:
			depth--
		}
	}
	if depth < 0 {
		depth = 0
	}
	return depth
}

// exportModel implements --build_model. It opens outPath through
// database/sql's generic "sqlite3" driver name; no
// SQLite-capable driver exists anywhere in the dependency pack this
// module was built against (see DESIGN.md), so this only succeeds in a
// binary that blank-imports one itself (e.g. `_ "github.com/mattn/go-sqlite3"`)
// before calling Execute — the export logic (dcexport) is fully wired and
// tested against the database/sql interface regardless of which driver
// backs it.
func exportModel(in *interp.Interpreter, outPath string) error {
	db, err := sql.Open("sqlite3", outPath)
	if err != nil {
		return fmt.Errorf("--build_model: opening %s: %w", outPath, err)
	}
	defer db.Close()
	tables, vars, relations := dcexport.FromInterpreter(in)
	return dcexport.Export(context.Background(), db, tables, vars, relations)
}
