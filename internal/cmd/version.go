package cmd

import (
	"fmt"
	"runtime"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"

	"github.com/memeforge/memeforge/internal/appid"
	"github.com/memeforge/memeforge/internal/memes"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print version information. Use --extended for build, runtime and dependency details.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		extended, _ := cmd.Flags().GetBool("extended")
		_, binaryName := appid.Names(GetAppIdentity())
		w := cmd.OutOrStdout()

		fmt.Fprintf(w, "%s %s\n", binaryName, versionInfo.Version)
		if !extended {
			return nil
		}

		deps := crucible.GetVersion()
		fmt.Fprintf(w, "Commit:    %s\n", versionInfo.Commit)
		fmt.Fprintf(w, "Built:     %s\n", versionInfo.BuildDate)
		fmt.Fprintf(w, "Go:        %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(w, "Templates: %d built-in\n", len(memes.Keys()))
		fmt.Fprintf(w, "Gofulmen:  %s\n", deps.Gofulmen)
		fmt.Fprintf(w, "Crucible:  %s\n", deps.Crucible)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolP("extended", "e", false, "show extended version information")
}
