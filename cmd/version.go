package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/vyomadl/vyoma-dl/pkg/consts"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"V"},
	Short:   "Print the version number of vyoma-dl",
	// skip config loading
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s version: %s %s/%s\nBuildTime: %s, Commit: %s\n",
			consts.AppName, consts.Version, runtime.GOOS, runtime.GOARCH, consts.BuildTime, consts.GitCommit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
