// Package cli implements the modvault command line: hashing files,
// checking a download directory against a modlist, uploading to a server
// and reconciling a local catalog offline.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "modvault",
	Short: "Tools for Wabbajack modlists and the archives they require",
	Long: `modvault hashes archives the way Wabbajack does, checks download
directories against a modlist, and feeds files to a modvault server.`,
	SilenceUsage: true,
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
