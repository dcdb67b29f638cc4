// Package main provides the reshape command-line tool.
package main

import (
	"os"

	"github.com/reshape/code-gen/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
