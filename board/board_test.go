package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/KVAR/errors"
	"github.com/teranos/KVAR/prop"
)

func TestFieldAccepted(t *testing.T) {
	assert.True(t, FieldAccepted("MPN"))
	assert.True(t, FieldAccepted("Tolerance"))
	assert.False(t, FieldAccepted("Value"))
	assert.False(t, FieldAccepted("value"))
	assert.False(t, FieldAccepted("Reference"))
	assert.False(t, FieldAccepted("FOOTPRINT"))
}

func TestSnapshotAddDuplicate(t *testing.T) {
	s := NewSnapshot()
	require.NoError(t, s.Add(&Component{ID: "a", Ref: "R1"}))
	err := s.Add(&Component{ID: "a", Ref: "R2"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConflict))
	assert.Equal(t, 1, s.Len())
}

func TestSnapshotOrderAndLookup(t *testing.T) {
	s := NewSnapshot()
	require.NoError(t, s.Add(&Component{ID: "b", Ref: "R2"}))
	require.NoError(t, s.Add(&Component{ID: "a", Ref: "R1"}))

	refs := []string{}
	for _, c := range s.Components() {
		refs = append(refs, c.Ref)
	}
	assert.Equal(t, []string{"R2", "R1"}, refs)
	assert.Equal(t, "R1", s.Component("a").Ref)
	assert.Nil(t, s.Component("missing"))
}

func TestSnapshotClone(t *testing.T) {
	ratio := 0.15
	s := NewSnapshot()
	require.NoError(t, s.Add(&Component{
		ID:         "a",
		Ref:        "R1",
		Value:      "1k0",
		Fields:     map[string]string{"MPN": "X1"},
		Props:      map[string]prop.TriState{"F": prop.StateTrue},
		PasteRatio: &ratio,
	}))

	clone := s.Clone()
	clone.Component("a").Value = "2k2"
	clone.Component("a").Fields["MPN"] = "X2"
	clone.Component("a").Props["F"] = prop.StateFalse
	*clone.Component("a").PasteRatio = 0.3

	orig := s.Component("a")
	assert.Equal(t, "1k0", orig.Value)
	assert.Equal(t, "X1", orig.Fields["MPN"])
	assert.Equal(t, prop.StateTrue, orig.Props["F"])
	assert.Equal(t, 0.15, *orig.PasteRatio)
}

func TestMemBoardSnapshotIsolation(t *testing.T) {
	b := NewMemBoard("demo.kvar.yaml")
	c := b.Add(&Component{Ref: "R1", Value: "1k0"})
	assert.NotEmpty(t, c.ID)

	snap, err := b.Snapshot()
	require.NoError(t, err)
	snap.Component(c.ID).Value = "2k2"

	fresh, err := b.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "1k0", fresh.Component(c.ID).Value)

	require.NoError(t, b.Store(snap))
	stored, err := b.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "2k2", stored.Component(c.ID).Value)
}
