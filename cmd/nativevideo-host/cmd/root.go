// Package cmd implements the nativevideo-host commands.
package cmd

import (
	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "nativevideo-host",
	Short: "Host the native video player plugin over HTTP",
	Long: `nativevideo-host runs the video player plugin the way a mobile host would:
method calls arrive as HTTP POSTs, event channels stream as server-sent
events, and a software media engine stands in for the platform player.

Use "nativevideo-host <command> --help" for more information about a command.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}
