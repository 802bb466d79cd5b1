package commands

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/KVAR/variant"
)

// TableCmd groups variant table inspection subcommands.
var TableCmd = &cobra.Command{
	Use:   "table",
	Short: "Inspect and check the variant lookup table",
}

var tableCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the variant table against the design's rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := openBoard(cmd)
		if err != nil {
			return err
		}
		_, model, err := compileBoard(provider)
		if err != nil {
			return err
		}
		table, err := loadTable(provider, model)
		if err != nil {
			return err
		}
		if !table.Loaded() {
			pterm.Info.Printfln("No variant table found (%s).", table.Path())
			return nil
		}
		pterm.Success.Printfln("Variant table is valid: %d variant(s) over %d aspect(s).",
			len(table.Variants()), len(table.Aspects()))
		for _, name := range table.Variants() {
			parts := make([]string, 0, len(table.Aspects()))
			for i, aspect := range table.Aspects() {
				parts = append(parts, variant.Quote(aspect)+"="+variant.Quote(table.Choices(name)[i]))
			}
			pterm.Printf("  %s: %s\n", pterm.Bold.Sprint(name), strings.Join(parts, " "))
		}
		return nil
	},
}

var tableMatchCmd = &cobra.Command{
	Use:   "match",
	Short: "Report which table variant matches the current design state",
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := openBoard(cmd)
		if err != nil {
			return err
		}
		snap, model, err := compileBoard(provider)
		if err != nil {
			return err
		}
		table, err := loadTable(provider, model)
		if err != nil {
			return err
		}
		if !table.Loaded() {
			pterm.Info.Printfln("No variant table found (%s).", table.Path())
			return nil
		}
		selection := variant.DetectCurrent(snap, model)
		if name := table.Match(selection); name != nil {
			pterm.Success.Printfln("Design state matches variant %q.", *name)
			return nil
		}
		pterm.Info.Println("Design state does not match a unique variant.")
		return nil
	},
}

func init() {
	TableCmd.AddCommand(tableCheckCmd)
	TableCmd.AddCommand(tableMatchCmd)
}
