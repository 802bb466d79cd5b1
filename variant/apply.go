package variant

import (
	"fmt"

	"github.com/teranos/KVAR/board"
	"github.com/teranos/KVAR/errors"
	"github.com/teranos/KVAR/prop"
)

// Change is one mutation needed to move the design to the desired
// selection.
type Change struct {
	ComponentID string
	Ref         string
	Text        string
}

// ApplySelection computes the changes needed to move the snapshot to the
// desired selection, and commits them to the snapshot unless dryRun is
// set. Aspects absent from the selection or left unresolved are skipped.
// Value, each property and each rule-targeted field are diffed
// independently; only explicit model states differing from live state
// produce a change.
//
// The returned error is only ever an internal invariant violation (an
// unclassifiable paste ratio after validation guaranteed it classifiable);
// it is never a user input error.
func ApplySelection(snap *board.Snapshot, m *Model, selection Selection, dryRun bool) ([]Change, error) {
	var changes []Change
	for _, id := range m.ids {
		c := snap.Component(id)
		rules := m.Components[id]
		choice, ok := selection.Get(rules.Aspect)
		if !ok {
			continue
		}
		choiceText := Quote(rules.Aspect) + "=" + Quote(choice)
		entry := rules.Cmp[choice]

		if entry != nil && entry.Value != nil && c.Value != *entry.Value {
			changes = append(changes, Change{
				ComponentID: id,
				Ref:         c.Ref,
				Text: fmt.Sprintf("Change %s value from '%s' to '%s' (%s).",
					c.Ref, Escape(c.Value), Escape(*entry.Value), choiceText),
			})
			if !dryRun {
				c.Value = *entry.Value
			}
		}

		for _, propID := range sortedLiveProps(c.Props) {
			if entry == nil {
				continue
			}
			want := entry.Props[propID]
			live := c.Props[propID]
			if !want.Known() || !live.Known() || want == live {
				continue
			}
			var oldText, newText string
			var newRatio *float64
			if propID == string(prop.CodeSolder) {
				var err error
				newRatio, err = invertPasteState(c.PasteRatio, want.Bool())
				if err != nil {
					return nil, err
				}
				oldText = prop.PasteRatioText(c.PasteRatio)
				newText = prop.PasteRatioText(newRatio)
			} else {
				oldText = "'" + boolText(prop.ConvertAttribState(propID, live.Bool())) + "'"
				newText = "'" + boolText(prop.ConvertAttribState(propID, want.Bool())) + "'"
			}
			changes = append(changes, Change{
				ComponentID: id,
				Ref:         c.Ref,
				Text: fmt.Sprintf("Change %s %s from %s to %s (%s).",
					c.Ref, prop.AttribDescription(propID), oldText, newText, choiceText),
			})
			if !dryRun {
				c.Props[propID] = want
				if propID == string(prop.CodeSolder) {
					c.PasteRatio = newRatio
				}
			}
		}

		for _, field := range sortedKeys(rules.Fields) {
			fieldEntry := rules.Fields[field][choice]
			if fieldEntry == nil || fieldEntry.Value == nil {
				continue
			}
			live := c.Fields[field]
			if live == *fieldEntry.Value {
				continue
			}
			changes = append(changes, Change{
				ComponentID: id,
				Ref:         c.Ref,
				Text: fmt.Sprintf("Change %s field '%s' from '%s' to '%s' (%s).",
					c.Ref, Escape(field), Escape(live), Escape(*fieldEntry.Value), choiceText),
			})
			if !dryRun {
				c.Fields[field] = *fieldEntry.Value
			}
		}
	}
	return changes, nil
}

// invertPasteState maps the desired solder paste boolean back into the
// signed-ratio domain, preserving exact round-trip recovery of a
// previously stored margin. Validation has already guaranteed the current
// ratio classifies, so an unexpected band here is a programming error.
func invertPasteState(ratio *float64, on bool) (*float64, error) {
	mode := prop.PasteModeFromRatio(ratio)
	if on {
		switch mode {
		case prop.PasteOffWasInherit:
			return nil, nil
		case prop.PasteOffWasRatio:
			restored := *ratio - prop.PasteOffset
			return &restored, nil
		}
		return nil, errors.AssertionFailedf("unexpected paste mode (%d) in OFF-to-ON transition", mode)
	}
	switch mode {
	case prop.PasteOnIsInherit:
		parked := prop.PasteInherit
		return &parked, nil
	case prop.PasteOnWithRatio:
		parked := *ratio + prop.PasteOffset
		return &parked, nil
	}
	return nil, errors.AssertionFailedf("unexpected paste mode (%d) in ON-to-OFF transition", mode)
}

func boolText(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
