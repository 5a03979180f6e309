// Package cli holds the startpage command tree.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree. Running it without a subcommand
// starts the server.
func NewRootCmd() *cobra.Command {
	serve := newServeCmd()

	root := &cobra.Command{
		Use:   "startpage",
		Short: "Self-hosted start page with bookmark profiles",
		Long: `startpage serves a personal start page: named profiles of bookmarks,
tags, background images and a search engine, stored as JSON files in a data
directory and protected by an optional login.

Configuration is read from STARTPAGE_* environment variables.`,
		SilenceUsage: true,
		RunE:         serve.RunE,
	}

	root.AddCommand(serve, newImportCmd(), newVersionCmd())
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
