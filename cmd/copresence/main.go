package main

import (
	"os"

	"copresence/cmd/copresence/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
