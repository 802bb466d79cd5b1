package variant

import (
	"github.com/teranos/KVAR/board"
	"github.com/teranos/KVAR/logger"
)

// Selection maps each aspect to its selected choice. A nil choice means
// the aspect is unresolved (no choice, or more than one, matches).
type Selection map[string]*string

// Get returns the selected choice for an aspect.
func (s Selection) Get(aspect string) (string, bool) {
	if c := s[aspect]; c != nil {
		return *c, true
	}
	return "", false
}

// DetectCurrent resolves the currently active choice per aspect by
// elimination: a candidate survives only if no owning component's live
// value, properties or rule-targeted field text contradicts the choice's
// explicit expectations. Exactly one survivor selects; zero or many leave
// the aspect unresolved.
func DetectCurrent(snap *board.Snapshot, m *Model) Selection {
	candidates := m.ChoiceDict()
	for _, id := range m.ids {
		c := snap.Component(id)
		rules := m.Components[id]
		var eliminate []string
		for _, choice := range candidates[rules.Aspect] {
			if mismatchesComponent(c, rules.Cmp[choice]) || mismatchesFields(c, rules, choice) {
				eliminate = append(eliminate, choice)
			}
		}
		if len(eliminate) > 0 {
			logger.Logger.Debugw("eliminating choices",
				"ref", c.Ref,
				"aspect", rules.Aspect,
				"choices", eliminate,
			)
			candidates[rules.Aspect] = remove(candidates[rules.Aspect], eliminate)
		}
	}
	selection := make(Selection, len(candidates))
	for aspect, remaining := range candidates {
		if len(remaining) == 1 {
			choice := remaining[0]
			selection[aspect] = &choice
		} else {
			selection[aspect] = nil
		}
	}
	return selection
}

// mismatchesComponent reports whether live component-scope state
// contradicts a choice's explicit expectations. Unspecified expectations
// and unknown live states never mismatch.
func mismatchesComponent(c *board.Component, entry *Entry) bool {
	if entry == nil {
		return false
	}
	if entry.Value != nil && c.Value != *entry.Value {
		return true
	}
	for propID, live := range c.Props {
		want := entry.Props[propID]
		if want.Known() && live.Known() && want != live {
			return true
		}
	}
	return false
}

// mismatchesFields reports whether any field-scope expectation differs
// from the live field text.
func mismatchesFields(c *board.Component, rules *ComponentRules, choice string) bool {
	for field, branch := range rules.Fields {
		entry := branch[choice]
		if entry == nil || entry.Value == nil {
			continue
		}
		if *entry.Value != c.Fields[field] {
			return true
		}
	}
	return false
}

func remove(choices []string, eliminate []string) []string {
	dead := make(map[string]bool, len(eliminate))
	for _, c := range eliminate {
		dead[c] = true
	}
	kept := choices[:0]
	for _, c := range choices {
		if !dead[c] {
			kept = append(kept, c)
		}
	}
	return kept
}
