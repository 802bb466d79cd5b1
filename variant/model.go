package variant

import (
	"sort"
	"strconv"

	"github.com/teranos/KVAR/board"
	"github.com/teranos/KVAR/logger"
	"github.com/teranos/KVAR/prop"
)

// Entry holds one choice's bindings within one scope: an optional
// replacement value and, for component scope only, property expectations.
type Entry struct {
	Value *string
	Props PropSet
}

func newEntry() *Entry {
	return &Entry{Props: make(PropSet)}
}

func (e *Entry) clone() *Entry {
	out := &Entry{Props: make(PropSet, len(e.Props))}
	if e.Value != nil {
		v := *e.Value
		out.Value = &v
	}
	for k, s := range e.Props {
		out.Props[k] = s
	}
	return out
}

// ChoiceMap maps choice names (including pseudo-choices during building) to
// their entries within one scope.
type ChoiceMap map[string]*Entry

// ComponentRules is the validated rule set of one component: its aspect,
// the component-scope choice table and the field-scope tables keyed by
// target field name.
type ComponentRules struct {
	Aspect string
	Cmp    ChoiceMap
	Fields map[string]ChoiceMap
}

// Model is the compiled configuration model of a design: per component id,
// the aspect it owns and its choice tables. Built once per run, validated,
// then frozen; a model that produced validation errors is never returned.
type Model struct {
	Base       Base
	Components map[string]*ComponentRules

	// ids preserves design order for deterministic iteration.
	ids []string
}

// IDs returns the component ids in design order.
func (m *Model) IDs() []string {
	return m.ids
}

// Rules returns the rules for a component id, or nil.
func (m *Model) Rules(id string) *ComponentRules {
	return m.Components[id]
}

// Empty reports whether no component carries rules.
func (m *Model) Empty() bool {
	return len(m.ids) == 0
}

// ChoiceDict maps each aspect to its choice names, ordered by first
// appearance across components (each component's contribution in natural
// order). Pseudo-choices are excluded.
type ChoiceDict map[string][]string

// Aspects returns the aspect names in natural order.
func (d ChoiceDict) Aspects() []string {
	aspects := make([]string, 0, len(d))
	for aspect := range d {
		aspects = append(aspects, aspect)
	}
	sortNatural(aspects)
	return aspects
}

// ChoiceDict collects the aspect/choice vocabulary of the model.
func (m *Model) ChoiceDict() ChoiceDict {
	return choiceDict(m.Components, m.ids)
}

func choiceDict(components map[string]*ComponentRules, ids []string) ChoiceDict {
	choices := make(ChoiceDict)
	appendChoice := func(aspect, choice string) {
		if choice == choiceDefault || choice == choiceStandin {
			return
		}
		for _, existing := range choices[aspect] {
			if existing == choice {
				return
			}
		}
		choices[aspect] = append(choices[aspect], choice)
	}
	for _, id := range ids {
		rules := components[id]
		if _, ok := choices[rules.Aspect]; !ok {
			choices[rules.Aspect] = nil
		}
		for _, choice := range sortedChoiceNames(rules.Cmp) {
			appendChoice(rules.Aspect, choice)
		}
		for _, field := range sortedKeys(rules.Fields) {
			for _, choice := range sortedChoiceNames(rules.Fields[field]) {
				appendChoice(rules.Aspect, choice)
			}
		}
	}
	return choices
}

// Compile detects the base token and builds the model in one step. With no
// rule fields anywhere, the result is an empty model and no errors.
func Compile(snap *board.Snapshot) (*Model, []*Error) {
	base, ok := DetectBase(snap)
	if !ok {
		return &Model{Base: BaseCandidates[0], Components: map[string]*ComponentRules{}}, nil
	}
	return BuildModel(snap, base)
}

// BuildModel merges all components' parsed records into a validated model.
// Errors are collected, never fail-fast; any error yields a nil model.
func BuildModel(snap *board.Snapshot, base Base) (*Model, []*Error) {
	b := &builder{
		snap:  snap,
		model: &Model{Base: base, Components: make(map[string]*ComponentRules)},
	}
	b.run()
	SortErrors(b.errs)
	if len(b.errs) > 0 {
		return nil, b.errs
	}
	return b.model, nil
}

type builder struct {
	snap  *board.Snapshot
	model *Model
	errs  []*Error

	// deferred field-scope inputs per component id
	fldRules      map[string][]fieldRule
	fldChoiceSets map[string][]fieldChoiceSet
}

func (b *builder) errorf(c *board.Component, format string, args ...interface{}) {
	if c == nil {
		b.errs = append(b.errs, validationErr("", "", format, args...))
		return
	}
	b.errs = append(b.errs, validationErr(c.ID, c.Ref, format, args...))
}

// syntaxf records a grammar violation inside one record. The record is dead,
// the rest of the design keeps parsing into the same error list.
func (b *builder) syntaxf(c *board.Component, format string, args ...interface{}) {
	b.errs = append(b.errs, syntaxErr(c.ID, c.Ref, format, args...))
}

func (b *builder) run() {
	b.fldRules = make(map[string][]fieldRule)
	b.fldChoiceSets = make(map[string][]fieldChoiceSet)

	for _, c := range b.snap.Components() {
		b.buildComponent(c)
	}
	b.buildFieldScopes()

	allChoices := choiceDict(b.model.Components, b.model.ids)
	for _, aspect := range allChoices.Aspects() {
		if len(allChoices[aspect]) == 0 {
			b.errorf(nil, "Aspect '%s' has no choices defined.", Escape(aspect))
		}
	}
	b.finalize(allChoices)
	b.checkConsistency()
	if len(b.errs) == 0 {
		b.checkAmbiguity(allChoices)
	}
}

// buildComponent parses one component's rule fields and merges its
// component-scope records.
func (b *builder) buildComponent(c *board.Component) {
	recs, parseErrs := parseRuleFields(c, b.model.Base)
	if len(parseErrs) > 0 {
		for _, msg := range parseErrs {
			b.syntaxf(c, "Field parser: %s.", msg)
		}
		return
	}

	var aspect string
	if recs.aspectField != nil {
		aspect = *recs.aspectField
	}

	var sets []choiceSet
	if recs.cmpRule != nil {
		aspects, parsed, msgs := parseRuleValue(*recs.cmpRule)
		if len(msgs) > 0 {
			for _, msg := range msgs {
				b.syntaxf(c, "Component-scope record parser: %s.", msg)
			}
			return
		}
		if len(aspects) > 1 {
			b.errorf(c, "Found multiple aspect identifiers.")
			return
		}
		if len(aspects) == 1 {
			if aspect != "" {
				b.errorf(c, "Conflicting aspect identifier specification styles (combined component-scope record vs. aspect field).")
				return
			}
			aspect = aspects[0]
		}
		sets = parsed
	}
	sets = append(sets, recs.cmpChoiceSets...)

	if aspect == "" {
		switch {
		case len(sets) > 0:
			b.errorf(c, "Component record(s) found, but missing an aspect identifier.")
		case len(recs.fldRules) > 0:
			b.errorf(c, "Combined field record(s) found, but missing an aspect identifier.")
		case len(recs.fldChoiceSets) > 0:
			b.errorf(c, "Simple field record(s) found, but missing an aspect identifier.")
		}
		return
	}

	logger.Logger.Debugw("component rules",
		"ref", c.Ref,
		"aspect", aspect,
		"choice_sets", len(sets),
	)

	rules := &ComponentRules{
		Aspect: aspect,
		Cmp:    make(ChoiceMap),
		Fields: make(map[string]ChoiceMap),
	}
	b.model.Components[c.ID] = rules
	b.model.ids = append(b.model.ids, c.ID)
	b.fldRules[c.ID] = recs.fldRules
	b.fldChoiceSets[c.ID] = recs.fldChoiceSets

	for _, set := range sets {
		if msgs := addChoice(rules, nil, set.names, set.args); len(msgs) > 0 {
			for _, msg := range msgs {
				b.errorf(c, "When adding aspect '%s' choice list '%s' in component record: %s.", Escape(aspect), set.names, msg)
			}
			return
		}
	}
}

// buildFieldScopes merges the deferred field-scope records of every
// component that established an aspect.
func (b *builder) buildFieldScopes() {
	for _, id := range b.model.ids {
		c := b.snap.Component(id)
		rules := b.model.Components[id]
		aspect := rules.Aspect

		ok := true
		for _, fr := range b.fldRules[id] {
			if fr.rule == "" {
				continue
			}
			aspects, sets, msgs := parseRuleValue(fr.rule)
			if len(msgs) > 0 {
				for _, msg := range msgs {
					b.syntaxf(c, "Combined field record parser for target field '%s': %s.", Escape(fr.field), msg)
				}
				ok = false
				continue
			}
			if len(aspects) > 0 {
				b.errorf(c, "Combined field record for target field '%s' contains what looks like an aspect identifier (only allowed in combined component-scope records).", Escape(fr.field))
				ok = false
				continue
			}
			if _, dup := rules.Fields[fr.field]; dup {
				b.errorf(c, "Multiple assignments for target field '%s'.", Escape(fr.field))
				ok = false
				continue
			}
			for _, set := range sets {
				if msgs := addChoice(rules, &fr.field, set.names, set.args); len(msgs) > 0 {
					for _, msg := range msgs {
						b.errorf(c, "Combined field record for aspect '%s' choice list '%s' with target field '%s': %s.", Escape(aspect), set.names, Escape(fr.field), msg)
					}
					ok = false
					break
				}
			}
		}
		if !ok {
			continue
		}
		for _, fs := range b.fldChoiceSets[id] {
			if msgs := addChoice(rules, &fs.field, fs.names, fs.args); len(msgs) > 0 {
				for _, msg := range msgs {
					b.errorf(c, "Simple field record for aspect '%s' choice list '%s' with target field '%s': %s.", Escape(aspect), fs.names, Escape(fs.field), msg)
				}
				break
			}
		}
	}
}

// addChoice parses one choice definition (name list + raw arguments) and
// merges it into the component- or field-scope choice map. field nil means
// component scope. Returned messages are contextless; the caller wraps
// them.
func addChoice(rules *ComponentRules, field *string, rawNames, rawArgs string) []string {
	fieldScope := field != nil
	names, err := SplitRaw(rawNames, ',', false)
	if err != nil {
		return []string{"Choice identifiers splitter error for identifier list '" + rawNames + "': " + err.Error()}
	}
	args, err := SplitRaw(rawArgs, ' ', true)
	if err != nil {
		return []string{"Choice arguments splitter error for argument list '" + rawArgs + "': " + err.Error()}
	}
	choices := make([]string, 0, len(names))
	for _, raw := range names {
		cooked, err := Cook(raw)
		if err != nil {
			return []string{"Choice identifier parser: " + err.Error()}
		}
		if cooked == "" {
			return []string{"Empty choice identifier"}
		}
		choices = append(choices, cooked)
	}

	var msgs []string
	var values []string
	set := make(PropSet)
	for _, rawArg := range args {
		arg, err := Cook(rawArg)
		if err != nil {
			msgs = append(msgs, "Choice argument parser: "+err.Error())
			continue
		}
		// a leading \+, \-, '+' or '-' is an escaped value, not a specifier
		if rawArg[0] == '+' || rawArg[0] == '-' {
			if fieldScope {
				msgs = append(msgs, "No property specifiers allowed in field-scope records")
				continue
			}
			if err := ParsePropSpec(arg, set); err != nil {
				msgs = append(msgs, "Property specifier parser error: "+err.Error())
				continue
			}
		} else {
			values = append(values, arg)
		}
	}

	var branch ChoiceMap
	if fieldScope {
		if rules.Fields[*field] == nil {
			rules.Fields[*field] = make(ChoiceMap)
		}
		branch = rules.Fields[*field]
	} else {
		branch = rules.Cmp
	}
	for _, choice := range choices {
		entry, ok := branch[choice]
		if !ok {
			entry = newEntry()
			branch[choice] = entry
		}
		if len(values) > 0 {
			value := joinValues(values)
			if entry.Value == nil {
				entry.Value = &value
			} else {
				msgs = append(msgs, "Illegal additional content '"+value+"' assignment for choice '"+choice+"'")
			}
		}
		for _, id := range sortedPropIDs(set) {
			if existing := entry.Props[id]; existing.Known() {
				msgs = append(msgs, "Illegal additional '"+prop.Abbrev(id)+"' property assignment for choice '"+choice+"'")
			} else {
				entry.Props[id] = set[id]
			}
		}
	}
	return msgs
}

func joinValues(values []string) string {
	out := values[0]
	for _, v := range values[1:] {
		out += " " + v
	}
	return out
}

// finalize flattens every choice set: standins seed absent choices,
// defaults backfill missing values and properties, implicit property
// defaults are inferred, and mixed defined/undefined sets are rejected.
func (b *builder) finalize(allChoices ChoiceDict) {
	for _, id := range b.model.ids {
		c := b.snap.Component(id)
		rules := b.model.Components[id]
		aspectChoices := allChoices[rules.Aspect]
		cmpMsgs := finalizeChoiceMap(rules.Cmp, aspectChoices, c.Props)
		for _, msg := range cmpMsgs {
			b.errorf(c, "In component record: %s.", msg)
		}
		if len(cmpMsgs) > 0 {
			continue
		}
		for _, field := range sortedKeys(rules.Fields) {
			for _, msg := range finalizeChoiceMap(rules.Fields[field], aspectChoices, nil) {
				b.errorf(c, "In field record for target field '%s': %s.", Escape(field), msg)
			}
		}
	}
}

// finalizeChoiceMap applies the defaulting rules to one choice set and
// strips the pseudo-choices. liveProps nil marks field scope, where only
// values are flattened since field-scope records carry no properties.
func finalizeChoiceMap(branch ChoiceMap, allChoices []string, liveProps map[string]prop.TriState) []string {
	var msgs []string
	standin := branch[choiceStandin]
	deflt := branch[choiceDefault]

	valuesDefined := 0
	for _, choice := range allChoices {
		entry, ok := branch[choice]
		if !ok {
			if standin != nil {
				entry = standin.clone()
			} else {
				entry = newEntry()
			}
			branch[choice] = entry
		}
		if deflt != nil && entry.Value == nil {
			entry.Value = deflt.Value
		}
		if entry.Value != nil {
			valuesDefined++
		}
	}
	if valuesDefined != 0 && valuesDefined != len(allChoices) {
		msgs = append(msgs, mixedMsg("content", "", valuesDefined, len(allChoices)))
	}

	if liveProps != nil {
		for _, propID := range sortedLiveProps(liveProps) {
			defaultState := prop.StateUnset
			if deflt != nil && deflt.Props[propID].Known() {
				defaultState = deflt.Props[propID]
			} else {
				// implicit default: if choices only ever state one
				// polarity, the opposite is the default for the rest
				var trues, falses int
				for _, choice := range allChoices {
					switch branch[choice].Props[propID] {
					case prop.StateTrue:
						trues++
					case prop.StateFalse:
						falses++
					}
				}
				if falses > 0 && trues == 0 {
					defaultState = prop.StateTrue
				} else if trues > 0 && falses == 0 {
					defaultState = prop.StateFalse
				}
			}
			propsDefined := 0
			for _, choice := range allChoices {
				entry := branch[choice]
				if !entry.Props[propID].Known() {
					entry.Props[propID] = defaultState
				}
				if entry.Props[propID].Known() {
					propsDefined++
				}
			}
			if propsDefined != 0 && propsDefined != len(allChoices) {
				msgs = append(msgs, mixedMsg(prop.Abbrev(propID)+" property", "('"+propID+"') state", propsDefined, len(allChoices)))
			}
		}
	}

	delete(branch, choiceDefault)
	delete(branch, choiceStandin)
	return msgs
}

func mixedMsg(what, suffix string, defined, total int) string {
	msg := "Mixed choices with defined (" + strconv.Itoa(defined) + "x) and undefined (" + strconv.Itoa(total-defined) + "x) " + what
	if suffix != "" {
		msg += " " + suffix
	}
	return msg + " (either all or none must be defined)"
}

// sortedChoiceNames returns a choice map's names in natural order.
func sortedChoiceNames(m ChoiceMap) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sortNatural(names)
	return names
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortNatural(keys)
	return keys
}

func sortedPropIDs(set PropSet) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedLiveProps(props map[string]prop.TriState) []string {
	ids := make([]string, 0, len(props))
	for id := range props {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
