// Command stockslot keeps per-owner append-only stock records.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/stockslot/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// ExitErrors were already reported through the output formatter.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(cli.ExitCommandError)
		}
		os.Exit(exitErr.Code)
	}
}
