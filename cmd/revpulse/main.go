package main

import (
	"os"

	"github.com/minsuk/revpulse/cmd/revpulse/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
