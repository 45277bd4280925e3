package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Information to find out exactly which commit the bot was built from.
// These are filled at build time with the -X linker flag.
var (
	Tag       = "unknown"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "search-bot",
	Short: "A Matrix bot that answers search commands using DuckDuckGo",
	Long: `search-bot resolves free-text queries with the DuckDuckGo instant answer API
and falls back to the HTML results page when no instant answer exists.

Available commands:
  run    - Connect to Matrix and answer !s commands
  query  - Run a single search and print the result`,
	SilenceUsage: true,
	Version:      fmt.Sprintf("%s (commit %s, built %s)", Tag, Commit, BuildTime),
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the config file")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(queryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
