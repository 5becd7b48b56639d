package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/findy-network/findy-custodian/agent/utils"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"github.com/spf13/cobra"
)

var versionVerbose bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Prints the version of the custodian",
	Long: `
Prints the version of the custodian. With --verbose the Go version and the VCS
information of the build are printed too.
	`,
	RunE: func(_ *cobra.Command, _ []string) (err error) {
		defer err2.Handle(&err)

		try.To1(fmt.Println(utils.Settings.VersionInfo()))
		if !versionVerbose {
			return nil
		}
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return nil
		}
		try.To1(fmt.Println("go:", info.GoVersion))
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision", "vcs.time", "vcs.modified":
				try.To1(fmt.Printf("%s: %s\n", s.Key, s.Value))
			}
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionVerbose, "verbose", false, "print build information")
	rootCmd.AddCommand(versionCmd)
}
