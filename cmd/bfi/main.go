// Command bfi runs programs for a saturating eight-instruction tape machine.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/bfi/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
