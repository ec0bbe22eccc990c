// ABOUTME: Entry point for the wander CLI
// ABOUTME: Executes the root command and exits non-zero on failure

package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
