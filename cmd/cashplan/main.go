package main

import (
	"os"

	"github.com/pwielgus/cashplan/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
