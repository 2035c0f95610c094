// Command huddle is a command-line client for the offline-first event cache.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	flagConfig  string
	flagUser    string
	flagOffline bool
	flagVerbose bool
)

// ============================================================================
// Root command
// ============================================================================

var rootCmd = &cobra.Command{
	Use:   "huddle",
	Short: "Huddle event cache CLI",
	Long: "Command-line interface for the Huddle offline-first event cache.\n" +
		"Read and write events, export them as iCalendar, or serve the HTTP API.",
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "config file (default ~/.huddle/config.toml; .yaml/.yml read as YAML)")
	pf.StringVar(&flagUser, "user", "", "act as this user ID")
	pf.BoolVar(&flagOffline, "offline", false, "treat the remote as unreachable and serve from the cache")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
