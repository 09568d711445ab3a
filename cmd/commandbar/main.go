// Package main provides the entry point for the commandbar CLI.
package main

import (
	"fmt"
	"os"

	"github.com/opencode-ai/commandbar/cmd/commandbar/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
