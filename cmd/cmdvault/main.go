// Package main is the entry point for the cmdvault CLI.
package main

import (
	"os"

	"github.com/runger/cmdvault/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
