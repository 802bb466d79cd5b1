// Package board defines the component snapshot the variant engine operates
// on, and the provider interface that binds it to an actual design file.
//
// A snapshot is rebuilt fresh for every run and never persisted. The engine
// mutates the in-memory snapshot when a selection is applied; writing the
// result back to the live design is the provider's job.
package board

import (
	"strings"

	"github.com/teranos/KVAR/errors"
	"github.com/teranos/KVAR/prop"
)

// Identity field names of the host format. These can never be rule target
// fields.
var identityFields = map[string]bool{
	"value":     true,
	"reference": true,
	"footprint": true,
}

// FieldAccepted reports whether a field name may carry or be targeted by
// variant rules. Comparison is case-insensitive because the host treats the
// identity fields that way.
func FieldAccepted(name string) bool {
	return !identityFields[strings.ToLower(name)]
}

// Component is the live state of one design component as seen by the
// engine: stable id, reference label, current value, free-form fields,
// normalized property states and the raw paste-margin ratio backing the
// solder paste property.
type Component struct {
	ID     string
	Ref    string
	Value  string
	Fields map[string]string
	Props  map[string]prop.TriState

	// PasteRatio is the raw signed margin ratio; nil means inherited.
	PasteRatio *float64
}

// Snapshot is an ordered collection of components, keyed by stable id.
// Order is the design file order and determines reporting order downstream.
type Snapshot struct {
	components []*Component
	byID       map[string]*Component
}

// NewSnapshot creates an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{byID: make(map[string]*Component)}
}

// Add appends a component. Duplicate ids are rejected; silently dropping
// one of two same-id components would corrupt later rule merging.
func (s *Snapshot) Add(c *Component) error {
	if _, ok := s.byID[c.ID]; ok {
		return errors.Wrapf(errors.ErrConflict, "duplicate component id %q (%s)", c.ID, c.Ref)
	}
	if c.Fields == nil {
		c.Fields = make(map[string]string)
	}
	if c.Props == nil {
		c.Props = make(map[string]prop.TriState)
	}
	s.components = append(s.components, c)
	s.byID[c.ID] = c
	return nil
}

// Components returns the components in design order.
func (s *Snapshot) Components() []*Component {
	return s.components
}

// Component returns the component with the given id, or nil.
func (s *Snapshot) Component(id string) *Component {
	return s.byID[id]
}

// Len returns the number of components.
func (s *Snapshot) Len() int {
	return len(s.components)
}

// Provider binds the engine to an actual design: it enumerates live
// component state into a snapshot and writes a mutated snapshot back.
type Provider interface {
	// DesignPath is the path of the underlying design file. Side-car
	// files (the variant table) derive their location from it.
	DesignPath() string

	// Snapshot builds a fresh snapshot of the current design state.
	Snapshot() (*Snapshot, error)

	// Store writes the (possibly mutated) snapshot back to the design.
	Store(*Snapshot) error
}

// clone deep-copies a component.
func (c *Component) clone() *Component {
	out := &Component{
		ID:     c.ID,
		Ref:    c.Ref,
		Value:  c.Value,
		Fields: make(map[string]string, len(c.Fields)),
		Props:  make(map[string]prop.TriState, len(c.Props)),
	}
	for k, v := range c.Fields {
		out.Fields[k] = v
	}
	for k, v := range c.Props {
		out.Props[k] = v
	}
	if c.PasteRatio != nil {
		r := *c.PasteRatio
		out.PasteRatio = &r
	}
	return out
}

// Clone deep-copies the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	out := NewSnapshot()
	for _, c := range s.components {
		_ = out.Add(c.clone())
	}
	return out
}
