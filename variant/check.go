package variant

import (
	"strings"

	"github.com/teranos/KVAR/prop"
)

// checkConsistency verifies the model against the live snapshot: every
// referenced property id must resolve on its component, and the raw paste
// ratio must be classifiable wherever a choice drives the solder paste
// property. These run even when earlier stages already collected errors.
func (b *builder) checkConsistency() {
	for _, id := range b.model.ids {
		c := b.snap.Component(id)
		rules := b.model.Components[id]
		for _, choice := range sortedChoiceNames(rules.Cmp) {
			if rules.Cmp[choice].Props[string(prop.CodeSolder)].Known() {
				if !prop.PasteStateFromRatio(c.PasteRatio).Known() {
					b.errorf(c, "Cannot classify current solder paste relative clearance (%s) to be used for '%s' property.",
						prop.PasteRatioText(c.PasteRatio), prop.Abbrev(string(prop.CodeSolder)))
					break
				}
			}
		}

		// report each unresolvable property id once per component
		reported := map[string]bool{}
		for _, choice := range sortedChoiceNames(rules.Cmp) {
			for _, propID := range sortedPropIDs(rules.Cmp[choice].Props) {
				if reported[propID] {
					continue
				}
				if _, ok := c.Props[propID]; !ok {
					reported[propID] = true
					b.errorf(c, "Cannot match property '%s' to component (probably index out of bounds).", prop.Abbrev(propID))
				}
			}
		}
	}
}

// checkAmbiguity detects semantically equivalent choices per aspect by
// comparing canonical flattened signatures over every owning component's
// component-scope entry and field-scope values. Each maximal cluster is
// reported once, with names in natural order. Runs only on otherwise valid
// models.
func (b *builder) checkAmbiguity(allChoices ChoiceDict) {
	for _, aspect := range allChoices.Aspects() {
		choices := append([]string(nil), allChoices[aspect]...)
		sortNatural(choices)

		signatures := make(map[string]string, len(choices))
		for _, choice := range choices {
			signatures[choice] = b.choiceSignature(aspect, choice)
		}

		reported := map[string]bool{}
		for _, a := range choices {
			if reported[a] {
				continue
			}
			cluster := []string{a}
			for _, c := range choices {
				if c == a || reported[c] {
					continue
				}
				if signatures[c] == signatures[a] {
					cluster = append(cluster, c)
				}
			}
			if len(cluster) < 2 {
				continue
			}
			sortNatural(cluster)
			quoted := make([]string, len(cluster))
			for i, name := range cluster {
				quoted[i] = "'" + Escape(name) + "'"
				reported[name] = true
			}
			b.errorf(nil, "Illegal ambiguity: Aspect '%s' has equivalent choices %s.", Escape(aspect), strings.Join(quoted, ", "))
		}
	}
}

// choiceSignature flattens everything one choice binds across the design
// into a canonical comparable string: per owning component, the
// component-scope value and properties plus every field-scope value.
func (b *builder) choiceSignature(aspect, choice string) string {
	var sig strings.Builder
	for _, id := range b.model.ids {
		rules := b.model.Components[id]
		if rules.Aspect != aspect {
			continue
		}
		sig.WriteString(id)
		sig.WriteByte('\x1d')
		writeEntry(&sig, rules.Cmp[choice], true)
		for _, field := range sortedKeys(rules.Fields) {
			sig.WriteString(field)
			sig.WriteByte('\x1d')
			writeEntry(&sig, rules.Fields[field][choice], false)
		}
	}
	return sig.String()
}

func writeEntry(sig *strings.Builder, e *Entry, withProps bool) {
	if e == nil {
		sig.WriteString("-\x1e")
		return
	}
	if e.Value == nil {
		sig.WriteString("~")
	} else {
		sig.WriteString("=" + *e.Value)
	}
	sig.WriteByte('\x1e')
	if withProps {
		for _, propID := range sortedPropIDs(e.Props) {
			if e.Props[propID].Known() {
				sig.WriteString(propID + ":" + e.Props[propID].String())
				sig.WriteByte('\x1e')
			}
		}
	}
}
