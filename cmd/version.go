package cmd

import (
	"fmt"

	"github.com/spigell/candidate-matcher/internal/embedding"

	"github.com/spf13/cobra"
)

// Actual version can be specified in build command.
var version = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and the built-in embedding model",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("%s version: %s (built-in embedding model: %s)\n", app, version, embedding.HashedModel)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
