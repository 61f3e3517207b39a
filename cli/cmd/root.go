// Package cmd implements the datacode CLI surface: a single cobra root
// command, after vippsas/sqlcode's own cli/cmd/root.go, whose modes are
// all flags on that command (there are no subcommands).
package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:          "datacode [file.dc]",
		Short:        "datacode",
		Version:      "0.1.0",
		SilenceUsage: true,
		Long:         `DataCode interpreter: executes .dc scripts, or starts an interactive REPL with none given.`,
		Args:         cobra.MaximumNArgs(1),
		RunE:         runRoot,
	}

	// flags of the root command
	repl         bool
	demo         bool
	buildModel   string
	websocket    bool
	host         string
	port         string
	useVE        bool
	dumpAST      bool
	maxCallDepth int

	log = logrus.New()
)

// Execute runs the root command; returns a non-zero-exit-worthy error
// on any unhandled core error.
func Execute() error {
	rootCmd.Flags().BoolVar(&repl, "repl", false, "interactive line-oriented REPL (default when no file is given)")
	rootCmd.Flags().BoolVar(&demo, "demo", false, "run a canned demonstration")
	rootCmd.Flags().StringVar(&buildModel, "build_model", "", "after execution, export every Table-valued global to SQLite (optional output path, default out.db)")
	rootCmd.Flags().Lookup("build_model").NoOptDefVal = "out.db"
	rootCmd.Flags().BoolVar(&websocket, "websocket", false, "start the session server instead of the REPL")
	rootCmd.Flags().StringVar(&host, "host", "", "session server bind host (overrides DATACODE_WS_ADDRESS)")
	rootCmd.Flags().StringVar(&port, "port", "", "session server bind port (overrides DATACODE_WS_ADDRESS)")
	rootCmd.Flags().BoolVar(&useVE, "use-ve", false, "enable per-session isolated working directory; getcwd() returns \"\"")
	rootCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "print the parsed statement list via repr before executing")
	rootCmd.Flags().IntVar(&maxCallDepth, "max-call-depth", 0, "override the recursion limit (0 keeps the built-in default)")
	return rootCmd.Execute()
}
