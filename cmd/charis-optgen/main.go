// Package main provides the charis-optgen command.
package main

import (
	"os"

	"github.com/example/charis-optgen/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		cli.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}
