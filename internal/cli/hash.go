package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rohits-web03/modvault/internal/hash"
	"github.com/rohits-web03/modvault/internal/logger"
)

// hashCmd prints the Wabbajack content hash of a file
var hashCmd = &cobra.Command{
	Use:   "hash FILE",
	Short: "Print the content hash of a file",
	Long: `Prints the xxHash64 content hash of FILE in the base64 form used by
Wabbajack manifests and the modvault server.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, size, err := hash.File(args[0])
		if err != nil {
			return err
		}
		logger.Log.Debugw("Hashed file", "file", args[0], "size", size)
		fmt.Fprintln(cmd.OutOrStdout(), h)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hashCmd)
}
