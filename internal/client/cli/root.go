// Package cli implements the journal CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "journal",
	Short: "Offline-first AI journal",
	Long:  "A journaling CLI that works offline. Entries are analyzed, stored locally, and synchronized with the backend whenever a connection is available.",
}

// Execute runs the CLI.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
