package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// set through ldflags at build time
var version string
var commitHash string
var buildDate string

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of soundmeter",
	Long:  `All software has versions. This is soundmeter's.`,
	Run: func(cmd *cobra.Command, args []string) {
		printSoundmeterVersion()
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}

func printSoundmeterVersion() {
	fmt.Printf("soundmeter Version: %s, %s/%s, BuildDate: %s, Commit: %s\n",
		version, runtime.GOOS, runtime.GOARCH, buildDate, commitHash)
}
