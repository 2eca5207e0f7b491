package main

import (
	"os"

	"github.com/wonny/dropscout/cmd/dropscout/commands"
)

// main is the entry point for the dropscout CLI
// ⭐ Unified CLI entry point: go run ./cmd/dropscout [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
