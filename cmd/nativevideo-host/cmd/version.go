package cmd

import (
	"runtime"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolP("short", "s", false, "Print only the version string")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			cmd.Println(Version)
			return
		}
		cmd.Printf("nativevideo-host %s (built %s, %s %s/%s)\n",
			Version, BuildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}
