// Command cgio is the entrypoint of the cgio command line.
package main

import (
	"fmt"
	"os"

	"github.com/tgolubev/cgio/cmd"
)

func main() {
	rootCmd := cmd.NewRootCommand(os.Stdin, os.Stdout, os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
