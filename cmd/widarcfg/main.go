// Package main provides the CLI for widarcfg, the WIDAR configuration
// reconstruction tool.
package main

import (
	"os"

	"github.com/leapstack-labs/widarcfg/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
