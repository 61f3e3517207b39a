package main

import (
	"os"

	"github.com/datacode-lang/datacode/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
