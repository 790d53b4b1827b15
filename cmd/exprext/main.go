// Command exprext compiles typed column expressions to SQL and runs
// conformance scenarios against embedded engines.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/exprext/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()

	// Commands report their own failures; anything else comes from cobra
	var exitErr *cli.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
