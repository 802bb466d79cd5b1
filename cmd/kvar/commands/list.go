package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/KVAR/variant"
)

// ListCmd lists all aspects and their available choices, marking the
// currently matched choice per aspect.
var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List aspects and their choices",
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

		dict := model.ChoiceDict()
		selection := variant.DetectCurrent(snap, model)
		for _, aspect := range dict.Aspects() {
			pterm.Println(pterm.Bold.Sprint(variant.Quote(aspect)))
			current, resolved := selection.Get(aspect)
			for _, choice := range dict[aspect] {
				marker := "  "
				if resolved && choice == current {
					marker = pterm.Green("* ")
				}
				pterm.Printf("  %s%s\n", marker, variant.Quote(choice))
			}
		}
		return nil
	},
}
