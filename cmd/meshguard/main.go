package main

import (
	"os"

	"meshguard/cmd/meshguard/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
