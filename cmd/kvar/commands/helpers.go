package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/KVAR/board"
	"github.com/teranos/KVAR/config"
	"github.com/teranos/KVAR/errors"
	"github.com/teranos/KVAR/variant"
	"github.com/teranos/KVAR/vartable"
)

// openBoard opens the board snapshot file named by --board or the config
// default.
func openBoard(cmd *cobra.Command) (*board.FileBoard, error) {
	path, _ := cmd.Flags().GetString("board")
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		path = cfg.Board.Path
	}
	if path == "" {
		return nil, errors.New("no board file given (use --board or set board.path)")
	}
	return board.OpenFile(path)
}

// compileBoard snapshots the board and compiles its model. Validation errors
// are reported in full and collapsed into a single summary error.
func compileBoard(provider board.Provider) (*board.Snapshot, *variant.Model, error) {
	snap, err := provider.Snapshot()
	if err != nil {
		return nil, nil, err
	}
	model, errs := variant.Compile(snap)
	if len(errs) > 0 {
		reportErrors("Rule validation failed:", errs)
		return nil, nil, errors.Newf("%d rule validation error(s)", len(errs))
	}
	return snap, model, nil
}

// loadTable loads the design's variant table against the model vocabulary.
// Table errors are reported in full and collapsed into a summary error.
func loadTable(provider board.Provider, model *variant.Model) (*vartable.Table, error) {
	table := vartable.ForDesign(provider.DesignPath())
	if errs := table.Load(model.ChoiceDict()); len(errs) > 0 {
		reportErrors("Variant table rejected:", errs)
		return nil, errors.Newf("%d variant table error(s)", len(errs))
	}
	return table, nil
}

func reportErrors(heading string, errs []*variant.Error) {
	pterm.Error.Println(heading)
	for _, e := range errs {
		pterm.Println("  " + pterm.Red(e.Error()))
	}
}
