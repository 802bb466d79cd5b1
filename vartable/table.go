// Package vartable implements the variant lookup table: named choice
// vectors over the model's aspects, persisted as a quoted CSV side-car
// next to the design file.
//
// The table is the only persisted entity of the engine. It is loaded with
// full structural validation against the model's aspect/choice vocabulary
// and never accepted partially; a content hash captured at load detects
// external modification before overwrite.
package vartable

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/teranos/KVAR/errors"
	"github.com/teranos/KVAR/variant"
)

// Extension is the side-car file suffix appended to the design file path
// (with its own extension stripped).
const Extension = ".kvar_vdt.csv"

// Table is a variant lookup table. Rows are variants, columns are aspects,
// cells are choice names.
type Table struct {
	path       string
	aspects    []string
	variants   []string
	choices    map[string][]string // variant name -> choice per aspect column
	hashAtLoad string
	loaded     bool
}

// ForDesign creates the table bound to a design file's side-car path.
func ForDesign(designPath string) *Table {
	path := ""
	if designPath != "" {
		ext := filepath.Ext(designPath)
		path = strings.TrimSuffix(designPath, ext) + Extension
	}
	return &Table{path: path, choices: make(map[string][]string)}
}

// Path returns the side-car file path ("" when the design path is unknown).
func (t *Table) Path() string {
	return t.path
}

// Loaded reports whether table data has been loaded from the file.
func (t *Table) Loaded() bool {
	return t.loaded
}

// Variants returns the variant names in file order.
func (t *Table) Variants() []string {
	return t.variants
}

// Aspects returns the aspect names in column order.
func (t *Table) Aspects() []string {
	return t.aspects
}

// Choices returns a variant's choice vector in column order, or nil.
func (t *Table) Choices(variantName string) []string {
	return t.choices[variantName]
}

// Load reads and validates the side-car file against the model vocabulary.
// A missing file is not an error; the table just stays unloaded. Any
// structural violation aborts loading with the complete error list; a
// partial table is never accepted.
func (t *Table) Load(vocab variant.ChoiceDict) []*variant.Error {
	if t.path == "" {
		return nil
	}
	f, err := os.Open(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return []*variant.Error{variant.TableError("Cannot read table file: %v.", err)}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	grid, err := reader.ReadAll()
	if err != nil {
		return []*variant.Error{variant.TableError("Malformed table file: %v.", err)}
	}

	// structural shape
	var errs []*variant.Error
	if len(grid) < 2 {
		errs = append(errs, variant.TableError("Table has less than two rows."))
	} else {
		width := -1
		for n, row := range grid {
			if len(row) < 2 {
				errs = append(errs, variant.TableError("Row %d has less than two columns.", n+1))
				break
			}
			if width == -1 {
				width = len(row)
			} else if len(row) != width {
				errs = append(errs, variant.TableError("Row %d has a different number of columns (%d) than previous rows (%d).", n+1, len(row), width))
				break
			}
		}
	}
	if len(errs) > 0 {
		return errs
	}

	variants := make([]string, 0, len(grid)-1)
	choices := make(map[string][]string, len(grid)-1)
	for _, row := range grid[1:] {
		variants = append(variants, row[0])
		choices[row[0]] = row[1:]
	}
	aspects := grid[0][1:]

	// variant identifiers
	if n := countEmpty(variants); n > 0 {
		errs = append(errs, variant.TableError("Found %d empty variant identifiers.", n))
	}
	if dups := duplicates(variants); len(dups) > 0 {
		errs = append(errs, variant.TableError("Found duplicate variant identifiers: %s.", quoteJoin(dups)))
	}
	if len(errs) > 0 {
		return errs
	}

	// aspect references
	if n := countEmpty(aspects); n > 0 {
		errs = append(errs, variant.TableError("Found %d empty aspect identifiers.", n))
	}
	if dups := duplicates(aspects); len(dups) > 0 {
		errs = append(errs, variant.TableError("Found duplicate aspect identifiers: %s.", quoteJoin(dups)))
	}
	knownAspects := vocab.Aspects()
	for _, aspect := range aspects {
		if _, ok := vocab[aspect]; !ok {
			errs = append(errs, variant.TableError("Aspect %q is invalid.%s", aspect, variant.DidYouMean(aspect, knownAspects)))
		}
	}
	if len(errs) > 0 {
		return errs
	}

	// choice references
	for _, name := range variants {
		for i, aspect := range aspects {
			choice := choices[name][i]
			if !contains(vocab[aspect], choice) {
				errs = append(errs, variant.TableError("For aspect %q, choice %q is invalid.%s", aspect, choice, variant.DidYouMean(choice, vocab[aspect])))
			}
		}
	}
	if len(errs) > 0 {
		return errs
	}

	// no two variants may share an identical choice vector
	seen := make(map[string]bool, len(variants))
	for _, name := range variants {
		key := strings.Join(choices[name], "\x1e")
		if seen[key] {
			errs = append(errs, variant.TableError("Found identical choice assignments for multiple variants."))
			break
		}
		seen[key] = true
	}
	if len(errs) > 0 {
		return errs
	}

	hash, err := t.fileHash()
	if err != nil {
		return []*variant.Error{variant.TableError("Cannot hash table file: %v.", err)}
	}
	t.hashAtLoad = hash
	t.variants = variants
	t.aspects = aspects
	t.choices = choices
	t.loaded = true
	return nil
}

// Save writes the table back as a fully quoted CSV grid. An empty table
// removes the file instead.
func (t *Table) Save() error {
	if t.path == "" {
		return errors.New("variant table has no file path")
	}
	if len(t.variants) == 0 && len(t.aspects) == 0 {
		if err := os.Remove(t.path); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "removing table file %s", t.path)
		}
		return nil
	}
	var b strings.Builder
	writeRow(&b, append([]string{""}, t.aspects...))
	for _, name := range t.variants {
		writeRow(&b, append([]string{name}, t.choices[name]...))
	}
	if err := os.WriteFile(t.path, []byte(b.String()), 0o644); err != nil {
		return errors.Wrapf(err, "writing table file %s", t.path)
	}
	return nil
}

// writeRow emits one quote-all CSV record. encoding/csv only quotes when
// required, but the side-car format quotes every cell.
func writeRow(b *strings.Builder, row []string) {
	for i, cell := range row {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(cell, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteString("\r\n")
}

// Create replaces the table content with a single variant capturing the
// given selection over the given aspects.
func (t *Table) Create(variantName string, aspects []string, selection map[string]string) {
	vector := make([]string, 0, len(aspects))
	for _, aspect := range aspects {
		vector = append(vector, selection[aspect])
	}
	t.aspects = append([]string(nil), aspects...)
	t.variants = []string{variantName}
	t.choices = map[string][]string{variantName: vector}
}

// AddVariant appends a variant with the given selection. Returns false if
// the name already exists.
func (t *Table) AddVariant(variantName string, selection map[string]string) bool {
	if contains(t.variants, variantName) {
		return false
	}
	vector := make([]string, 0, len(t.aspects))
	for _, aspect := range t.aspects {
		vector = append(vector, selection[aspect])
	}
	t.choices[variantName] = vector
	t.variants = append(t.variants, variantName)
	return true
}

// DeleteVariant removes a variant. Removing the last variant clears the
// whole table. Returns false if the name is unknown.
func (t *Table) DeleteVariant(variantName string) bool {
	if !contains(t.variants, variantName) {
		return false
	}
	delete(t.choices, variantName)
	kept := t.variants[:0]
	for _, name := range t.variants {
		if name != variantName {
			kept = append(kept, name)
		}
	}
	t.variants = kept
	if len(t.variants) == 0 {
		t.Clear()
	}
	return true
}

// Clear empties the table.
func (t *Table) Clear() {
	t.aspects = nil
	t.variants = nil
	t.choices = make(map[string][]string)
}

// Match returns the unique variant whose stored choice vector equals the
// selection across all table aspects, or nil when zero or multiple
// variants match.
func (t *Table) Match(selection variant.Selection) *string {
	var matching []string
	for _, name := range t.variants {
		miss := false
		for i, aspect := range t.aspects {
			choice, ok := selection.Get(aspect)
			if !ok || t.choices[name][i] != choice {
				miss = true
				break
			}
		}
		if !miss {
			matching = append(matching, name)
		}
	}
	if len(matching) != 1 {
		return nil
	}
	return &matching[0]
}

// fileHash returns the sha256 of the current file content, or "" when the
// file does not exist.
func (t *Table) fileHash() (string, error) {
	f, err := os.Open(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Changed reports whether the file content differs from what was loaded.
// This is optimistic detect-then-warn, not a lock.
func (t *Table) Changed() (bool, error) {
	hash, err := t.fileHash()
	if err != nil {
		return false, errors.Wrapf(err, "hashing table file %s", t.path)
	}
	return hash != t.hashAtLoad, nil
}

func countEmpty(items []string) int {
	n := 0
	for _, item := range items {
		if item == "" {
			n++
		}
	}
	return n
}

func duplicates(items []string) []string {
	seen := make(map[string]bool, len(items))
	var dups []string
	for _, item := range items {
		if seen[item] {
			dups = append(dups, item)
		}
		seen[item] = true
	}
	return dups
}

func quoteJoin(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}
	return strings.Join(quoted, ", ")
}

func contains(items []string, needle string) bool {
	for _, item := range items {
		if item == needle {
			return true
		}
	}
	return false
}
