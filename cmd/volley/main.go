package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/volleyhq/volley/internal/cli"
)

// Main is the entry point for the application
// It's exported to make it testable
func Main() int {
	// VOLLEY_* settings may live in a local .env; a missing file is fine.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(Main())
}
