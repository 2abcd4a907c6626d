package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "aria",
	Short: "An unsupervised, online text-learning engine",
	Long:  "aria learns word pairs and their behavioral categories from plain text as it arrives, with no training phase and no external model.",
}

var configPath string

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to an aria.toml config file")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(respondCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(topCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(categoryCmd)
}
