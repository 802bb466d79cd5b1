package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/KVAR/cmd/kvar/commands"
	"github.com/teranos/KVAR/config"
	"github.com/teranos/KVAR/logger"
)

var rootCmd = &cobra.Command{
	Use:   "kvar",
	Short: "KVAR - build-variant engine for hardware designs",
	Long: `KVAR - build-variant engine for hardware designs.

KVAR compiles rule expressions embedded in component fields into a
per-component choice table, resolves which choice is currently active per
aspect of variation, and applies a chosen combination as a diff of
component mutations.

Available commands:
  state  - Show the currently active choice per aspect
  list   - List aspects and their choices
  apply  - Apply a variant or explicit aspect=choice assignments
  table  - Inspect and check the variant lookup table
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonOutput, _ := cmd.Flags().GetBool("json")
		if !cmd.Flags().Changed("verbose") {
			if cfg, err := config.Load(); err == nil {
				verbosity = cfg.Output.Verbosity
			}
		}
		if err := logger.Initialize(verbosity, jsonOutput); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().Bool("json", false, "Machine-readable log output")
	rootCmd.PersistentFlags().StringP("board", "b", "", "Board snapshot file (defaults to board.path from config)")

	rootCmd.AddCommand(commands.StateCmd)
	rootCmd.AddCommand(commands.ListCmd)
	rootCmd.AddCommand(commands.ApplyCmd)
	rootCmd.AddCommand(commands.TableCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
