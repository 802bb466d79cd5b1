package commands

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/KVAR/errors"
	"github.com/teranos/KVAR/logger"
	"github.com/teranos/KVAR/variant"
)

// ApplyCmd applies a named variant or explicit aspect=choice assignments
// to the design.
var ApplyCmd = &cobra.Command{
	Use:   "apply [aspect=choice ...]",
	Short: "Apply a variant or explicit aspect=choice assignments",
	Long: `Apply a variant or explicit aspect=choice assignments.

Either name a variant from the design's variant table with --variant, or
give one or more aspect=choice assignments as arguments. Assignments are
merged on top of the current design state; aspects left unassigned and
unresolved are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		variantName, _ := cmd.Flags().GetString("variant")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		if variantName == "" && len(args) == 0 {
			return errors.New("nothing to apply (give aspect=choice assignments or --variant)")
		}

		provider, err := openBoard(cmd)
		if err != nil {
			return err
		}
		snap, model, err := compileBoard(provider)
		if err != nil {
			return err
		}
		if model.Empty() {
			return errors.New("design contains no variant rules")
		}

		selection := variant.DetectCurrent(snap, model)
		dict := model.ChoiceDict()

		if variantName != "" {
			table, err := loadTable(provider, model)
			if err != nil {
				return err
			}
			if !table.Loaded() {
				return errors.Newf("design has no variant table (%s)", table.Path())
			}
			vector := table.Choices(variantName)
			if vector == nil {
				return errors.Newf("variant %q not found in table.%s",
					variantName, variant.DidYouMean(variantName, table.Variants()))
			}
			for i, aspect := range table.Aspects() {
				choice := vector[i]
				selection[aspect] = &choice
			}
		}

		for _, arg := range args {
			aspect, choice, ok := strings.Cut(arg, "=")
			if !ok {
				return errors.Newf("malformed assignment %q (expected aspect=choice)", arg)
			}
			choices, known := dict[aspect]
			if !known {
				return errors.Newf("aspect %q is invalid.%s", aspect, variant.DidYouMean(aspect, dict.Aspects()))
			}
			found := false
			for _, c := range choices {
				if c == choice {
					found = true
					break
				}
			}
			if !found {
				return errors.Newf("for aspect %q, choice %q is invalid.%s",
					aspect, choice, variant.DidYouMean(choice, choices))
			}
			c := choice
			selection[aspect] = &c
		}

		changes, err := variant.ApplySelection(snap, model, selection, dryRun)
		if err != nil {
			return err
		}
		if len(changes) == 0 {
			pterm.Info.Println("Design is already in the requested state.")
			return nil
		}
		for _, change := range changes {
			pterm.Println(pterm.Cyan(change.Text))
		}
		if dryRun {
			pterm.Info.Printfln("%d change(s) pending (dry run, design not modified).", len(changes))
			return nil
		}
		if err := provider.Store(snap); err != nil {
			return err
		}
		logger.Logger.Infow("applied selection", "changes", len(changes), "design", provider.DesignPath())
		pterm.Success.Printfln("Applied %d change(s).", len(changes))
		return nil
	},
}

func init() {
	ApplyCmd.Flags().String("variant", "", "Variant name from the design's variant table")
	ApplyCmd.Flags().Bool("dry-run", false, "Report changes without modifying the design")
}
