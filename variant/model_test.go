package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/KVAR/board"
	"github.com/teranos/KVAR/prop"
)

// testComponent builds a component with the normalized live properties a
// board provider would deliver: all assembly properties set, solder paste
// inherited.
func testComponent(id, ref, value string, fields map[string]string) *board.Component {
	if fields == nil {
		fields = map[string]string{}
	}
	return &board.Component{
		ID:     id,
		Ref:    ref,
		Value:  value,
		Fields: fields,
		Props: map[string]prop.TriState{
			string(prop.CodeFit):    prop.StateTrue,
			string(prop.CodeBOM):    prop.StateTrue,
			string(prop.CodePos):    prop.StateTrue,
			string(prop.CodeSolder): prop.PasteStateFromRatio(nil),
		},
	}
}

func testSnapshot(t *testing.T, comps ...*board.Component) *board.Snapshot {
	t.Helper()
	s := board.NewSnapshot()
	for _, c := range comps {
		require.NoError(t, s.Add(c))
	}
	return s
}

func strPtr(s string) *string { return &s }

func TestDetectBase(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		want   Base
		ok     bool
	}{
		{"bare field", map[string]string{"Var": "Power 5V(1k0)"}, "Var", true},
		{"aspect field", map[string]string{"Var.Aspect": "Power"}, "Var", true},
		{"field rule suffix", map[string]string{"MPN.Var": "5V(a)"}, "Var", true},
		{"simple choice set", map[string]string{"Var(5V)": "1k0"}, "Var", true},
		{"alternative base", map[string]string{"Config": "Power 5V(1k0)"}, "Config", true},
		{"priority order", map[string]string{"Build": "x 1(a)", "Var": "y 2(b)"}, "Var", true},
		{"empty value ignored", map[string]string{"Var": ""}, "", false},
		{"no rule fields", map[string]string{"MPN": "X123"}, "", false},
		{"case sensitive", map[string]string{"VAR": "Power 5V(1k0)"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := testSnapshot(t, testComponent("c1", "R1", "", tt.fields))
			base, ok := DetectBase(snap)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, base)
			}
		})
	}
}

func TestCompileNoRules(t *testing.T) {
	snap := testSnapshot(t, testComponent("c1", "R1", "1k0", map[string]string{"MPN": "X1"}))
	m, errs := Compile(snap)
	require.Empty(t, errs)
	assert.True(t, m.Empty())
}

func TestBuildValueChoices(t *testing.T) {
	snap := testSnapshot(t,
		testComponent("c1", "R1", "1k0", map[string]string{"Var": "Power 5V(1k0) 12V(2k2)"}),
	)
	m, errs := Compile(snap)
	require.Empty(t, ErrorStrings(errs))
	require.NotNil(t, m)

	rules := m.Rules("c1")
	require.NotNil(t, rules)
	assert.Equal(t, "Power", rules.Aspect)
	require.Contains(t, rules.Cmp, "5V")
	require.Contains(t, rules.Cmp, "12V")
	assert.Equal(t, strPtr("1k0"), rules.Cmp["5V"].Value)
	assert.Equal(t, strPtr("2k2"), rules.Cmp["12V"].Value)

	dict := m.ChoiceDict()
	assert.Equal(t, ChoiceDict{"Power": {"5V", "12V"}}, dict)
	assert.Equal(t, []string{"Power"}, dict.Aspects())
}

func TestBuildAspectFieldStyle(t *testing.T) {
	snap := testSnapshot(t,
		testComponent("c1", "R1", "1k0", map[string]string{
			"Var.Aspect": "Power",
			"Var(5V)":    "1k0",
			"Var(12V)":   "2k2",
		}),
	)
	m, errs := Compile(snap)
	require.Empty(t, ErrorStrings(errs))
	rules := m.Rules("c1")
	assert.Equal(t, "Power", rules.Aspect)
	assert.Equal(t, strPtr("1k0"), rules.Cmp["5V"].Value)
	assert.Equal(t, strPtr("2k2"), rules.Cmp["12V"].Value)
}

func TestBuildPropsWithImplicitDefault(t *testing.T) {
	snap := testSnapshot(t,
		testComponent("c1", "R1", "", map[string]string{"Var": "Assembly ON(+!) OFF()"}),
	)
	m, errs := Compile(snap)
	require.Empty(t, ErrorStrings(errs))

	cmp := m.Rules("c1").Cmp
	for _, id := range []string{"F", "B", "P"} {
		assert.Equal(t, prop.StateTrue, cmp["ON"].Props[id], id)
		// only ON states the properties, so OFF gets the opposite
		assert.Equal(t, prop.StateFalse, cmp["OFF"].Props[id], id)
	}
	assert.False(t, cmp["ON"].Props["S"].Known())
	assert.False(t, cmp["OFF"].Props["S"].Known())
}

func TestBuildDefaultChoiceBackfill(t *testing.T) {
	snap := testSnapshot(t,
		testComponent("c1", "R1", "1k0", map[string]string{"Var": "Power 5V(1k0) 12V(2k2)"}),
		testComponent("c2", "C1", "100n", map[string]string{"Var": "Power *(100n) 12V(220n)"}),
	)
	m, errs := Compile(snap)
	require.Empty(t, ErrorStrings(errs))

	cmp := m.Rules("c2").Cmp
	assert.Equal(t, strPtr("220n"), cmp["12V"].Value)
	assert.Equal(t, strPtr("100n"), cmp["5V"].Value)
	assert.NotContains(t, cmp, "*")
}

func TestBuildStandinChoice(t *testing.T) {
	snap := testSnapshot(t,
		testComponent("c1", "R1", "1k0", map[string]string{"Var": "Power 5V(1k0) 12V(2k2)"}),
		testComponent("c2", "R2", "", map[string]string{"Var": "Power ?(-F) 5V(+F)"}),
	)
	m, errs := Compile(snap)
	require.Empty(t, ErrorStrings(errs))

	cmp := m.Rules("c2").Cmp
	assert.Equal(t, prop.StateTrue, cmp["5V"].Props["F"])
	assert.Equal(t, prop.StateFalse, cmp["12V"].Props["F"])
	assert.NotContains(t, cmp, "?")
}

func TestBuildFieldRecords(t *testing.T) {
	snap := testSnapshot(t,
		testComponent("c1", "R1", "1k0", map[string]string{
			"Var":     "Power 5V() 12V()",
			"MPN":     "PART-5",
			"MPN.Var": "5V(PART-5) 12V(PART-12)",
		}),
	)
	m, errs := Compile(snap)
	require.Empty(t, ErrorStrings(errs))

	rules := m.Rules("c1")
	require.Contains(t, rules.Fields, "MPN")
	assert.Equal(t, strPtr("PART-5"), rules.Fields["MPN"]["5V"].Value)
	assert.Equal(t, strPtr("PART-12"), rules.Fields["MPN"]["12V"].Value)
}

func TestBuildSimpleFieldRecord(t *testing.T) {
	snap := testSnapshot(t,
		testComponent("c1", "R1", "1k0", map[string]string{
			"Var":          "Power 5V() 12V()",
			"MPN":          "PART-5",
			"MPN.Var(5V)":  "PART-5",
			"MPN.Var(12V)": "PART-12",
		}),
	)
	m, errs := Compile(snap)
	require.Empty(t, ErrorStrings(errs))
	rules := m.Rules("c1")
	assert.Equal(t, strPtr("PART-5"), rules.Fields["MPN"]["5V"].Value)
	assert.Equal(t, strPtr("PART-12"), rules.Fields["MPN"]["12V"].Value)
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		want   string
	}{
		{
			"missing aspect",
			map[string]string{"Var": "5V(1k0)"},
			"R1: Component record(s) found, but missing an aspect identifier.",
		},
		{
			"multiple aspects",
			map[string]string{"Var": "Power Motor 5V(1k0)"},
			"R1: Found multiple aspect identifiers.",
		},
		{
			"conflicting aspect styles",
			map[string]string{"Var.Aspect": "Power", "Var": "Motor 5V(1k0)"},
			"R1: Conflicting aspect identifier specification styles (combined component-scope record vs. aspect field).",
		},
		{
			"mixed content",
			map[string]string{"Var": "Power 5V(1k0) 12V()"},
			"R1: In component record: Mixed choices with defined (1x) and undefined (1x) content (either all or none must be defined).",
		},
		{
			"aspect without choices",
			map[string]string{"Var.Aspect": "Power"},
			"Aspect 'Power' has no choices defined.",
		},
		{
			"empty choice identifier",
			map[string]string{"Var": "Power ''(1k0)"},
			"R1: When adding aspect 'Power' choice list '''' in component record: Empty choice identifier.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := testSnapshot(t, testComponent("c1", "R1", "1k0", tt.fields))
			m, errs := Compile(snap)
			assert.Nil(t, m)
			assert.Contains(t, ErrorStrings(errs), tt.want)
		})
	}
}

func TestBuildUnknownTargetField(t *testing.T) {
	snap := testSnapshot(t,
		testComponent("c1", "R1", "1k0", map[string]string{
			"Var":           "Power 5V() 12V()",
			"Tolerance":     "5%",
			"Tolerence.Var": "5V(1%) 12V(5%)",
		}),
	)
	m, errs := Compile(snap)
	assert.Nil(t, m)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "Target field 'Tolerence' does not exist.")
	assert.Contains(t, errs[0].Error(), `Did you mean "Tolerance"?`)
}

func TestBuildForbiddenTargetField(t *testing.T) {
	snap := testSnapshot(t,
		testComponent("c1", "R1", "1k0", map[string]string{
			"Var":       "Power 5V() 12V()",
			"Value.Var": "5V(1k0) 12V(2k2)",
		}),
	)
	m, errs := Compile(snap)
	assert.Nil(t, m)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "Target field 'Value' is forbidden")
}

func TestBuildAmbiguousChoices(t *testing.T) {
	snap := testSnapshot(t,
		testComponent("c1", "R1", "1k0", map[string]string{"Var": "Power 5V(1k0) 12V(1k0)"}),
	)
	m, errs := Compile(snap)
	assert.Nil(t, m)
	assert.Contains(t, ErrorStrings(errs),
		"Illegal ambiguity: Aspect 'Power' has equivalent choices '5V', '12V'.")
}

func TestBuildAmbiguityResolvedByOtherComponent(t *testing.T) {
	// equal on R1, distinguished by R2
	snap := testSnapshot(t,
		testComponent("c1", "R1", "1k0", map[string]string{"Var": "Power 5V(1k0) 12V(1k0)"}),
		testComponent("c2", "R2", "a", map[string]string{"Var": "Power 5V(a) 12V(b)"}),
	)
	m, errs := Compile(snap)
	require.Empty(t, ErrorStrings(errs))
	assert.NotNil(t, m)
}

func TestBuildUnmatchedPropertyIndex(t *testing.T) {
	snap := testSnapshot(t,
		testComponent("c1", "R1", "", map[string]string{"Var": "Display ON(+M1) OFF(-M1)"}),
	)
	m, errs := Compile(snap)
	assert.Nil(t, m)
	assert.Contains(t, ErrorStrings(errs),
		"R1: Cannot match property 'Model#1' to component (probably index out of bounds).")
}

func TestBuildFieldPropSpecForbidden(t *testing.T) {
	snap := testSnapshot(t,
		testComponent("c1", "R1", "1k0", map[string]string{
			"Var":         "Power 5V() 12V()",
			"MPN":         "X",
			"MPN.Var(5V)": "+F",
		}),
	)
	m, errs := Compile(snap)
	assert.Nil(t, m)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "No property specifiers allowed in field-scope records")
}
