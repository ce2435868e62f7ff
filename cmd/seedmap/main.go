// Package main is the seedmap command.
package main

import (
	"os"

	"github.com/leapstack-labs/seedmap/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
