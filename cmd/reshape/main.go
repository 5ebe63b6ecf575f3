// Package main provides the CLI entry point for reshape.
package main

import (
	"os"

	"github.com/reshape-labs/reshape/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
