package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/KVAR/variant"
)

// StateCmd shows the currently matched choice per aspect, and the variant
// name when the selection matches exactly one table entry.
var StateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the currently active choice per aspect",
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := openBoard(cmd)
		if err != nil {
			return err
		}
		snap, model, err := compileBoard(provider)
		if err != nil {
			return err
		}
		if model.Empty() {
			pterm.Info.Println("No variant rules found in design.")
			return nil
		}

		selection := variant.DetectCurrent(snap, model)
		unresolved := 0
		for _, aspect := range model.ChoiceDict().Aspects() {
			choice, ok := selection.Get(aspect)
			if ok {
				pterm.Printf("%s: %s\n", variant.Quote(aspect), variant.Quote(choice))
			} else {
				pterm.Printf("%s: %s\n", variant.Quote(aspect), pterm.Yellow("<unresolved>"))
				unresolved++
			}
		}
		if unresolved > 0 {
			pterm.Warning.Printfln("%d aspect(s) do not match any choice.", unresolved)
			return nil
		}

		table, err := loadTable(provider, model)
		if err != nil {
			return err
		}
		if table.Loaded() {
			if name := table.Match(selection); name != nil {
				pterm.Success.Printfln("Design state matches variant %q.", *name)
			} else {
				pterm.Info.Println("Design state does not match a unique variant.")
			}
		}
		return nil
	},
}
