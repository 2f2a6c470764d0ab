// Package main provides the entry point for the prashna CLI.
package main

import (
	"os"

	"github.com/shikshalabs/prashna/cmd/prashna/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
