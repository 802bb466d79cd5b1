package board

import (
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/teranos/KVAR/errors"
	"github.com/teranos/KVAR/prop"
)

// fileComponent is the YAML shape of one component. Attribute fields carry
// host polarity (exclusion flags), not property polarity; the conversion
// happens when building or storing a snapshot.
type fileComponent struct {
	ID             string            `yaml:"id,omitempty"`
	Ref            string            `yaml:"ref"`
	Value          string            `yaml:"value"`
	Fields         map[string]string `yaml:"fields,omitempty"`
	DoNotPopulate  bool              `yaml:"do_not_populate,omitempty"`
	ExcludeFromBOM bool              `yaml:"exclude_from_bom,omitempty"`
	ExcludeFromPos bool              `yaml:"exclude_from_pos,omitempty"`
	PasteRatio     *float64          `yaml:"paste_margin_ratio,omitempty"`
	Models         []bool            `yaml:"models,omitempty"`
}

type fileDoc struct {
	Components []*fileComponent `yaml:"components"`
}

// FileBoard is a Provider backed by a YAML design snapshot file. It serves
// offline use of the engine (CI checks, tests, designs exported from the
// host tool).
type FileBoard struct {
	path string
	doc  fileDoc
}

// OpenFile reads a YAML board file.
func OpenFile(path string) (*FileBoard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading board file %s", path)
	}
	b := &FileBoard{path: path}
	if err := yaml.Unmarshal(data, &b.doc); err != nil {
		return nil, errors.Wrapf(err, "parsing board file %s", path)
	}
	for _, fc := range b.doc.Components {
		if fc.ID == "" {
			fc.ID = uuid.NewString()
		}
	}
	return b, nil
}

// DesignPath implements Provider.
func (b *FileBoard) DesignPath() string {
	return b.path
}

// Snapshot implements Provider. Property states are normalized the way the
// host tool exposes them: exclusion attributes invert into property states,
// the solder paste state derives from the raw margin ratio, and each 3D
// model slot becomes an indexed property.
func (b *FileBoard) Snapshot() (*Snapshot, error) {
	s := NewSnapshot()
	for _, fc := range b.doc.Components {
		c := &Component{
			ID:     fc.ID,
			Ref:    fc.Ref,
			Value:  fc.Value,
			Fields: make(map[string]string),
			Props:  make(map[string]prop.TriState),
		}
		for name, text := range fc.Fields {
			if FieldAccepted(name) {
				c.Fields[name] = text
			}
		}
		c.Props[string(prop.CodeFit)] = prop.StateOf(prop.ConvertAttribState(string(prop.CodeFit), fc.DoNotPopulate))
		c.Props[string(prop.CodeBOM)] = prop.StateOf(prop.ConvertAttribState(string(prop.CodeBOM), fc.ExcludeFromBOM))
		c.Props[string(prop.CodePos)] = prop.StateOf(prop.ConvertAttribState(string(prop.CodePos), fc.ExcludeFromPos))
		c.Props[string(prop.CodeSolder)] = prop.PasteStateFromRatio(fc.PasteRatio)
		for i, shown := range fc.Models {
			c.Props[prop.IndexedID(prop.CodeModel, i+1)] = prop.StateOf(shown)
		}
		if fc.PasteRatio != nil {
			r := *fc.PasteRatio
			c.PasteRatio = &r
		}
		if err := s.Add(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Store implements Provider: it folds the snapshot's property states back
// into host attributes and rewrites the file.
func (b *FileBoard) Store(s *Snapshot) error {
	byID := make(map[string]*fileComponent, len(b.doc.Components))
	for _, fc := range b.doc.Components {
		byID[fc.ID] = fc
	}
	for _, c := range s.Components() {
		fc := byID[c.ID]
		if fc == nil {
			return errors.AssertionFailedf("snapshot component %q (%s) unknown to board file", c.ID, c.Ref)
		}
		fc.Value = c.Value
		for name, text := range c.Fields {
			if FieldAccepted(name) {
				if fc.Fields == nil {
					fc.Fields = make(map[string]string)
				}
				fc.Fields[name] = text
			}
		}
		for id, state := range c.Props {
			if !state.Known() {
				continue
			}
			code, index, _ := prop.SplitID(id)
			switch code {
			case prop.CodeFit:
				fc.DoNotPopulate = prop.ConvertAttribState(id, state.Bool())
			case prop.CodeBOM:
				fc.ExcludeFromBOM = prop.ConvertAttribState(id, state.Bool())
			case prop.CodePos:
				fc.ExcludeFromPos = prop.ConvertAttribState(id, state.Bool())
			case prop.CodeModel:
				if index >= 1 && index <= len(fc.Models) {
					fc.Models[index-1] = state.Bool()
				}
			}
		}
		if c.PasteRatio != nil {
			r := *c.PasteRatio
			fc.PasteRatio = &r
		} else {
			fc.PasteRatio = nil
		}
	}
	data, err := yaml.Marshal(&b.doc)
	if err != nil {
		return errors.Wrap(err, "encoding board file")
	}
	if err := os.WriteFile(b.path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing board file %s", b.path)
	}
	return nil
}
