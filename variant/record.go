package variant

import (
	"sort"
	"strings"

	"github.com/teranos/KVAR/board"
)

// Base is the rule-field family prefix active for a design, e.g. "Var" for
// fields named "Var", "Var.Aspect" or "MPN.Var". It is detected once per
// run and threaded through all calls; it is never mutable global state.
type Base string

// BaseCandidates are the recognized base tokens, in detection priority
// order. Matching is case-sensitive: the host format allows field names
// differing only in case to coexist, so case-insensitive matching could
// pick up unrelated user fields.
var BaseCandidates = []Base{"Var", "Variant", "Config", "Build"}

// aspectFieldSuffix names the dedicated aspect field, e.g. "Var.Aspect".
const aspectFieldSuffix = "Aspect"

// Pseudo-choice names used in rule expressions. Both seed inheritance
// during finalization and are stripped before the model is final.
const (
	choiceDefault = "*"
	choiceStandin = "?"
)

// DetectBase scans all components for the first non-empty field matching a
// known record shape under one of the candidate base tokens. The first
// candidate with any match wins and is used design-wide. ok is false when
// no component carries any rule field.
func DetectBase(snap *board.Snapshot) (Base, bool) {
	for _, base := range BaseCandidates {
		for _, c := range snap.Components() {
			for _, name := range sortedFieldNames(c) {
				value := c.Fields[name]
				if value == "" {
					continue
				}
				parts, err := SplitRaw(name, '.', false)
				if err != nil {
					continue
				}
				switch {
				case len(parts) == 2 && parts[0] == string(base) && parts[1] == aspectFieldSuffix:
					return base, true
				case len(parts) == 1 && parts[0] == string(base):
					return base, true
				case len(parts) > 1 && parts[len(parts)-1] == string(base):
					return base, true
				default:
					prefix, inside, err := SplitParens(parts[len(parts)-1])
					if err != nil || inside == nil {
						continue
					}
					if prefix == string(base) {
						return base, true
					}
				}
			}
		}
	}
	return "", false
}

// sortedFieldNames returns a component's field names in natural order, so
// record parsing and error reporting are deterministic.
func sortedFieldNames(c *board.Component) []string {
	names := make([]string, 0, len(c.Fields))
	for name := range c.Fields {
		names = append(names, name)
	}
	sort.SliceStable(names, func(i, j int) bool { return naturalLess(names[i], names[j]) })
	return names
}

// choiceSet is one parenthesized choice definition: a raw comma-separated
// choice-name list and the raw argument text.
type choiceSet struct {
	names string
	args  string
}

// fieldChoiceSet targets one component field.
type fieldChoiceSet struct {
	field string
	names string
	args  string
}

// fieldRule is a combined record scoped to one component field.
type fieldRule struct {
	field string
	rule  string
}

// componentRecords is the outcome of classifying one component's fields
// against the active base token.
type componentRecords struct {
	aspectField    *string // value of the dedicated aspect field, if any
	cmpRule        *string // value of the bare BASE field, if any
	cmpChoiceSets  []choiceSet
	fldRules       []fieldRule
	fldChoiceSets  []fieldChoiceSet
}

// parseRuleFields classifies a component's fields into record shapes.
// Field names that do not match any shape are silently ignored; they are
// the user's own fields and must not produce noise.
func parseRuleFields(c *board.Component, base Base) (componentRecords, []string) {
	var recs componentRecords
	var errs []string
	for _, name := range sortedFieldNames(c) {
		value := c.Fields[name]
		parts, err := SplitRaw(name, '.', false)
		if err != nil {
			continue
		}
		last := parts[len(parts)-1]
		switch {
		case len(parts) == 2 && parts[0] == string(base) && parts[1] == aspectFieldSuffix:
			v := value
			recs.aspectField = &v
		case len(parts) == 1 && parts[0] == string(base):
			v := value
			recs.cmpRule = &v
		case len(parts) > 1 && last == string(base):
			target := strings.Join(parts[:len(parts)-1], ".")
			if msg := fieldNameCheck(target, c.Fields); msg != "" {
				errs = append(errs, "Combined field record: "+msg)
				continue
			}
			recs.fldRules = append(recs.fldRules, fieldRule{field: target, rule: value})
		default:
			prefix, inside, err := SplitParens(last)
			if err != nil || inside == nil {
				continue
			}
			if prefix != string(base) {
				continue
			}
			nameList := *inside
			inParens, err := SplitRaw(nameList, ' ', true)
			if err != nil {
				continue
			}
			if len(inParens) > 1 {
				errs = append(errs, "Choice identifier list '"+nameList+"' contains illegal space character")
				continue
			}
			if len(parts) == 1 {
				recs.cmpChoiceSets = append(recs.cmpChoiceSets, choiceSet{names: nameList, args: value})
				continue
			}
			target := strings.Join(parts[:len(parts)-1], ".")
			if msg := fieldNameCheck(target, c.Fields); msg != "" {
				errs = append(errs, "Simple field record: "+msg)
				continue
			}
			recs.fldChoiceSets = append(recs.fldChoiceSets, fieldChoiceSet{field: target, names: nameList, args: value})
		}
	}
	return recs, errs
}

// fieldNameCheck validates a rule's target field: identity fields are
// forbidden, and the field must exist on the component. Unknown names get a
// closest-match suggestion.
func fieldNameCheck(field string, available map[string]string) string {
	if !board.FieldAccepted(field) {
		return "Target field '" + Escape(field) + "' is forbidden"
	}
	if _, ok := available[field]; !ok {
		candidates := make([]string, 0, len(available))
		for name := range available {
			if board.FieldAccepted(name) {
				candidates = append(candidates, name)
			}
		}
		sortNatural(candidates)
		return "Target field '" + Escape(field) + "' does not exist." + DidYouMean(field, candidates)
	}
	return ""
}

// parseRuleValue parses a combined record value into aspect declarations
// and choice definitions. Sections are space-separated; a bare section is
// an aspect name (cooked), a parenthesized one a choice definition (kept
// raw for addChoice).
func parseRuleValue(rule string) (aspects []string, sets []choiceSet, errs []string) {
	sections, err := SplitRaw(rule, ' ', true)
	if err != nil {
		return nil, nil, []string{"Combined record splitter: " + err.Error()}
	}
	for _, section := range sections {
		nameList, content, err := SplitParens(section)
		if err != nil {
			errs = append(errs, "Choice expression splitter: "+err.Error())
			continue
		}
		if content == nil {
			// no parens: an aspect name
			cooked, err := Cook(nameList)
			if err != nil {
				errs = append(errs, "Aspect identifier parser: "+err.Error())
				continue
			}
			if cooked == "" {
				errs = append(errs, "Aspect identifier must not be empty")
				continue
			}
			aspects = append(aspects, cooked)
			continue
		}
		if nameList == "" {
			errs = append(errs, "Choice identifier list must not be empty")
			continue
		}
		sets = append(sets, choiceSet{names: nameList, args: *content})
	}
	return aspects, sets, errs
}
