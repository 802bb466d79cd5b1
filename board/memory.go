package board

import (
	"github.com/google/uuid"

	"github.com/teranos/KVAR/prop"
)

// MemBoard is an in-memory Provider for tests and fixtures.
type MemBoard struct {
	path       string
	components []*Component
}

// NewMemBoard creates an empty in-memory board. designPath is only used to
// derive side-car file locations.
func NewMemBoard(designPath string) *MemBoard {
	return &MemBoard{path: designPath}
}

// Add appends a component, assigning a fresh id when none is set, and
// returns it for further setup.
func (b *MemBoard) Add(c *Component) *Component {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Fields == nil {
		c.Fields = make(map[string]string)
	}
	if c.Props == nil {
		c.Props = make(map[string]prop.TriState)
	}
	b.components = append(b.components, c)
	return c
}

// DesignPath implements Provider.
func (b *MemBoard) DesignPath() string {
	return b.path
}

// Snapshot implements Provider. Every call yields an independent copy, the
// way a real provider re-reads the design.
func (b *MemBoard) Snapshot() (*Snapshot, error) {
	s := NewSnapshot()
	for _, c := range b.components {
		if err := s.Add(c.clone()); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Store implements Provider.
func (b *MemBoard) Store(s *Snapshot) error {
	replaced := make([]*Component, 0, s.Len())
	for _, c := range s.Components() {
		replaced = append(replaced, c.clone())
	}
	b.components = replaced
	return nil
}
