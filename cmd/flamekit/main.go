package main

import (
	"os"

	"github.com/flamekit/flamekit/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
