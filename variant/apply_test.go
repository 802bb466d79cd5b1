package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/KVAR/prop"
)

func selectionOf(pairs map[string]string) Selection {
	s := make(Selection, len(pairs))
	for aspect, choice := range pairs {
		c := choice
		s[aspect] = &c
	}
	return s
}

func TestApplyValueChange(t *testing.T) {
	snap := testSnapshot(t,
		testComponent("c1", "R1", "1k0", map[string]string{"Var": "Power 5V(1k0) 12V(2k2)"}),
	)
	m, errs := Compile(snap)
	require.Empty(t, ErrorStrings(errs))

	changes, err := ApplySelection(snap, m, selectionOf(map[string]string{"Power": "12V"}), false)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "R1", changes[0].Ref)
	assert.Equal(t, "Change R1 value from '1k0' to '2k2' (Power=12V).", changes[0].Text)
	assert.Equal(t, "2k2", snap.Component("c1").Value)

	// second application is a no-op
	changes, err = ApplySelection(snap, m, selectionOf(map[string]string{"Power": "12V"}), false)
	require.NoError(t, err)
	assert.Empty(t, changes)

	selection := DetectCurrent(snap, m)
	choice, ok := selection.Get("Power")
	require.True(t, ok)
	assert.Equal(t, "12V", choice)
}

func TestApplyDryRun(t *testing.T) {
	snap := testSnapshot(t,
		testComponent("c1", "R1", "1k0", map[string]string{"Var": "Power 5V(1k0) 12V(2k2)"}),
	)
	m, errs := Compile(snap)
	require.Empty(t, ErrorStrings(errs))

	changes, err := ApplySelection(snap, m, selectionOf(map[string]string{"Power": "12V"}), true)
	require.NoError(t, err)
	assert.Len(t, changes, 1)
	assert.Equal(t, "1k0", snap.Component("c1").Value)
}

func TestApplyUnselectedAspectSkipped(t *testing.T) {
	snap := testSnapshot(t,
		testComponent("c1", "R1", "1k0", map[string]string{"Var": "Power 5V(1k0) 12V(2k2)"}),
	)
	m, errs := Compile(snap)
	require.Empty(t, ErrorStrings(errs))

	changes, err := ApplySelection(snap, m, Selection{"Power": nil}, false)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestApplyProps(t *testing.T) {
	snap := testSnapshot(t,
		testComponent("c1", "R1", "", map[string]string{"Var": "Assembly ON(+!) OFF(-!)"}),
	)
	m, errs := Compile(snap)
	require.Empty(t, ErrorStrings(errs))

	changes, err := ApplySelection(snap, m, selectionOf(map[string]string{"Assembly": "OFF"}), false)
	require.NoError(t, err)
	require.Len(t, changes, 3)
	c := snap.Component("c1")
	assert.Equal(t, prop.StateFalse, c.Props["F"])
	assert.Equal(t, prop.StateFalse, c.Props["B"])
	assert.Equal(t, prop.StateFalse, c.Props["P"])

	// descriptions carry the host attribute wording and polarity
	assert.Equal(t,
		"Change R1 'Exclude from bill of materials' from 'false' to 'true' (Assembly=OFF).",
		changes[0].Text)
	assert.Equal(t,
		"Change R1 'Do not populate' from 'false' to 'true' (Assembly=OFF).",
		changes[1].Text)
	assert.Equal(t,
		"Change R1 'Exclude from position files' from 'false' to 'true' (Assembly=OFF).",
		changes[2].Text)
}

func TestApplyPasteInheritRoundTrip(t *testing.T) {
	snap := testSnapshot(t,
		testComponent("c1", "R1", "", map[string]string{"Var": "Paste ON(+S) OFF(-S)"}),
	)
	m, errs := Compile(snap)
	require.Empty(t, ErrorStrings(errs))
	c := snap.Component("c1")
	require.Nil(t, c.PasteRatio)

	// OFF parks the inherited state at the far-negative marker
	changes, err := ApplySelection(snap, m, selectionOf(map[string]string{"Paste": "OFF"}), false)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	require.NotNil(t, c.PasteRatio)
	assert.Equal(t, prop.PasteInherit, *c.PasteRatio)
	assert.Equal(t, prop.StateFalse, c.Props["S"])

	// idempotent
	changes, err = ApplySelection(snap, m, selectionOf(map[string]string{"Paste": "OFF"}), false)
	require.NoError(t, err)
	assert.Empty(t, changes)

	// ON restores the inherited state exactly
	changes, err = ApplySelection(snap, m, selectionOf(map[string]string{"Paste": "ON"}), false)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Nil(t, c.PasteRatio)
	assert.Equal(t, prop.StateTrue, c.Props["S"])
}

func TestApplyPasteRatioRoundTrip(t *testing.T) {
	comp := testComponent("c1", "R1", "", map[string]string{"Var": "Paste ON(+S) OFF(-S)"})
	ratio := 0.15
	comp.PasteRatio = &ratio
	comp.Props["S"] = prop.PasteStateFromRatio(comp.PasteRatio)
	snap := testSnapshot(t, comp)
	m, errs := Compile(snap)
	require.Empty(t, ErrorStrings(errs))
	c := snap.Component("c1")

	_, err := ApplySelection(snap, m, selectionOf(map[string]string{"Paste": "OFF"}), false)
	require.NoError(t, err)
	require.NotNil(t, c.PasteRatio)
	assert.Equal(t, 0.15+prop.PasteOffset, *c.PasteRatio)

	_, err = ApplySelection(snap, m, selectionOf(map[string]string{"Paste": "ON"}), false)
	require.NoError(t, err)
	require.NotNil(t, c.PasteRatio)
	assert.InDelta(t, 0.15, *c.PasteRatio, 1e-9)
}

func TestApplyFieldChange(t *testing.T) {
	snap := testSnapshot(t,
		testComponent("c1", "R1", "1k0", map[string]string{
			"Var":     "Power 5V() 12V()",
			"MPN":     "PART-5",
			"MPN.Var": "5V(PART-5) 12V(PART-12)",
		}),
	)
	m, errs := Compile(snap)
	require.Empty(t, ErrorStrings(errs))

	changes, err := ApplySelection(snap, m, selectionOf(map[string]string{"Power": "12V"}), false)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "Change R1 field 'MPN' from 'PART-5' to 'PART-12' (Power=12V).", changes[0].Text)
	assert.Equal(t, "PART-12", snap.Component("c1").Fields["MPN"])
}
