// Command bouttime is a timed trivia game: order four historical events
// before the countdown runs out.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/bouttime/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		return
	}
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) || !exitErr.Reported {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
