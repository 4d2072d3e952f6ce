package main

import (
	"os"

	"github.com/wakili/backend/cmd/wakilictl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
