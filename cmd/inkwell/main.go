// Package main is the entry point for the inkwell CLI.
package main

import (
	"os"

	"github.com/inkwell-sh/inkwell/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
