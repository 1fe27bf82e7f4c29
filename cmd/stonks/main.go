package main

import (
	"os"

	"github.com/stonksapi/backend/cmd/stonks/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
