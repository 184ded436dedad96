package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var version string
var commitHash string
var buildDate string

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of graphAudio",
	Long:  `All software has versions. This is graphAudio's.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(versionString())
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}

// version, commitHash and buildDate are injected during compilation
// through -ldflags; if not, version is "dev"
func versionString() string {
	v := version
	if v == "" {
		v = "dev"
	}
	return fmt.Sprintf("graphAudio Version: %s, %s/%s, BuildDate: %s, Commit: %s",
		v, runtime.GOOS, runtime.GOARCH, buildDate, commitHash)
}
