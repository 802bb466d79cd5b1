package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/KVAR/prop"
)

func TestDetectCurrentByValue(t *testing.T) {
	snap := testSnapshot(t,
		testComponent("c1", "R1", "1k0", map[string]string{"Var": "Power 5V(1k0) 12V(2k2)"}),
		testComponent("c2", "C1", "100n", map[string]string{"Var": "Power 5V(100n) 12V(220n)"}),
	)
	m, errs := Compile(snap)
	require.Empty(t, ErrorStrings(errs))

	selection := DetectCurrent(snap, m)
	choice, ok := selection.Get("Power")
	require.True(t, ok)
	assert.Equal(t, "5V", choice)
}

func TestDetectCurrentUnresolved(t *testing.T) {
	snap := testSnapshot(t,
		testComponent("c1", "R1", "9999", map[string]string{"Var": "Power 5V(1k0) 12V(2k2)"}),
	)
	m, errs := Compile(snap)
	require.Empty(t, ErrorStrings(errs))

	selection := DetectCurrent(snap, m)
	_, ok := selection.Get("Power")
	assert.False(t, ok)
}

func TestDetectCurrentContradiction(t *testing.T) {
	// components disagree, eliminating every choice
	snap := testSnapshot(t,
		testComponent("c1", "R1", "1k0", map[string]string{"Var": "Power 5V(1k0) 12V(2k2)"}),
		testComponent("c2", "C1", "220n", map[string]string{"Var": "Power 5V(100n) 12V(220n)"}),
	)
	m, errs := Compile(snap)
	require.Empty(t, ErrorStrings(errs))

	selection := DetectCurrent(snap, m)
	_, ok := selection.Get("Power")
	assert.False(t, ok)
}

func TestDetectCurrentByProps(t *testing.T) {
	fitted := testComponent("c1", "R1", "", map[string]string{"Var": "Assembly ON(+!) OFF(-!)"})
	snap := testSnapshot(t, fitted)
	m, errs := Compile(snap)
	require.Empty(t, ErrorStrings(errs))

	selection := DetectCurrent(snap, m)
	choice, ok := selection.Get("Assembly")
	require.True(t, ok)
	assert.Equal(t, "ON", choice)

	unfitted := testComponent("c1", "R1", "", map[string]string{"Var": "Assembly ON(+!) OFF(-!)"})
	for _, id := range []string{"F", "B", "P"} {
		unfitted.Props[id] = prop.StateFalse
	}
	snap = testSnapshot(t, unfitted)
	selection = DetectCurrent(snap, m)
	choice, ok = selection.Get("Assembly")
	require.True(t, ok)
	assert.Equal(t, "OFF", choice)
}

func TestDetectCurrentByField(t *testing.T) {
	snap := testSnapshot(t,
		testComponent("c1", "R1", "1k0", map[string]string{
			"Var":     "Power 5V() 12V()",
			"MPN":     "PART-12",
			"MPN.Var": "5V(PART-5) 12V(PART-12)",
		}),
	)
	m, errs := Compile(snap)
	require.Empty(t, ErrorStrings(errs))

	selection := DetectCurrent(snap, m)
	choice, ok := selection.Get("Power")
	require.True(t, ok)
	assert.Equal(t, "12V", choice)
}

func TestDetectCurrentIndependentAspects(t *testing.T) {
	snap := testSnapshot(t,
		testComponent("c1", "R1", "1k0", map[string]string{"Var": "Power 5V(1k0) 12V(2k2)"}),
		testComponent("c2", "U1", "REG-A", map[string]string{"Var": "Reg A(REG-A) B(REG-B)"}),
	)
	m, errs := Compile(snap)
	require.Empty(t, ErrorStrings(errs))

	selection := DetectCurrent(snap, m)
	power, ok := selection.Get("Power")
	require.True(t, ok)
	reg, ok := selection.Get("Reg")
	require.True(t, ok)
	assert.Equal(t, "5V", power)
	assert.Equal(t, "A", reg)
}
