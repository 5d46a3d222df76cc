// Command precario runs the shop back office and its maintenance commands.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/precario/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	err := cmd.Execute()
	if err == nil {
		return
	}

	// Commands report their own failures. Anything else (unknown command,
	// bad flag, broken stdout) has not been printed yet.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCommandError)
	}
	os.Exit(exitErr.Code)
}
