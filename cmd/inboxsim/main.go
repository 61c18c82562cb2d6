// Command inboxsim runs, records and checks the inbox simulation.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/inboxsim/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "inboxsim:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
