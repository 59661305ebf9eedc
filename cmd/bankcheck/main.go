// Command bankcheck replays model-generated ITF traces against the bank
// ledger and reports where the implementation diverges from the model.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/bankcheck/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
