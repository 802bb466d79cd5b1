package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/KVAR/version"
)

// VersionCmd prints build version information.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		short, _ := cmd.Flags().GetBool("short")
		if short {
			pterm.Println(version.Get().Short())
			return
		}
		pterm.Println(version.Get().String())
	},
}

func init() {
	VersionCmd.Flags().Bool("short", false, "Print only the version number")
}
