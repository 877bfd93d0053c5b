package main

import (
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "kestrel",
	Short: "Kestrel embeddable runtime host",
	Long:  `Kestrel drives the embeddable object-model runtime: evaluate sources through an installed evaluator and inspect heap accounting.`,
}

func main() {
	rootCmd.Version = version

	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(statsCmd)

	rootCmd.PersistentFlags().String("config", "", "path to a TOML limits file")
	rootCmd.PersistentFlags().Int64("mem-limit", 0, "heap byte limit, overrides the config file")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
