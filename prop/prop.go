// Package prop defines the togglable component properties KVAR can drive:
// their single-letter codes, the indexed model-visibility slots, the group
// alias, and the tri-state (true/false/unknown) values they carry.
package prop

import "strconv"

// Property codes. All of these are uppercase; input is case-normalized
// before lookup.
const (
	CodeFit    = 'F' // do-not-populate (inverted host attribute)
	CodeBOM    = 'B' // exclude from bill of materials (inverted)
	CodePos    = 'P' // exclude from position files (inverted)
	CodeSolder = 'S' // solder paste on/off
	CodeModel  = 'M' // 3D model visibility, indexed (M#1, M#2, ...)

	// GroupAssemble is an alias that fans out to Fit, BOM and Pos
	// atomically.
	GroupAssemble = '!'
)

// MaxIndex is the highest accepted slot index for indexed property codes.
const MaxIndex = 99999

// BaseCodes returns every real property code (excluding group aliases).
func BaseCodes() []rune {
	return []rune{CodeFit, CodeBOM, CodePos, CodeSolder, CodeModel}
}

// Supported reports whether c is a valid code in a property specifier,
// including group aliases.
func Supported(c rune) bool {
	switch c {
	case CodeFit, CodeBOM, CodePos, CodeSolder, CodeModel, GroupAssemble:
		return true
	}
	return false
}

// Inverted reports whether the host attribute behind the code has inverted
// polarity: the property states "populate", "in BOM", "in position files",
// while the host stores the exclusion.
func Inverted(c rune) bool {
	return c == CodeFit || c == CodeBOM || c == CodePos
}

// Indexed reports whether the code requires a slot index.
func Indexed(c rune) bool {
	return c == CodeModel
}

// AssembleCodes returns the codes the group alias expands to.
func AssembleCodes() []rune {
	return []rune{CodeFit, CodeBOM, CodePos}
}

// IndexedID builds the canonical property id for an indexed code, e.g.
// IndexedID('M', 2) == "M#2".
func IndexedID(code rune, index int) string {
	return string(code) + "#" + strconv.Itoa(index)
}

// SplitID splits a property id into its code and optional index.
// An unrecognized id yields code 0.
func SplitID(id string) (code rune, index int, indexed bool) {
	runes := []rune(id)
	if len(runes) > 2 && runes[1] == '#' && Indexed(runes[0]) {
		n, err := strconv.Atoi(id[2:])
		if err == nil && n >= 0 {
			return runes[0], n, true
		}
		return 0, 0, false
	}
	if len(runes) == 1 && Supported(runes[0]) {
		return runes[0], 0, false
	}
	return 0, 0, false
}

// ConvertAttribState translates between a property state and its host
// attribute state, honoring inverted polarity. The mapping is its own
// inverse.
func ConvertAttribState(id string, state bool) bool {
	code, _, _ := SplitID(id)
	if Inverted(code) {
		return !state
	}
	return state
}

// AttribDescription returns the host-attribute wording used in
// human-readable change descriptions.
func AttribDescription(id string) string {
	code, index, indexed := SplitID(id)
	name := "(unknown)"
	switch code {
	case CodeBOM:
		name = "'Exclude from bill of materials'"
	case CodePos:
		name = "'Exclude from position files'"
	case CodeFit:
		name = "'Do not populate'"
	case CodeSolder:
		name = "solder paste relative clearance"
	case CodeModel:
		name = "visibility of 3D model"
	}
	if indexed {
		name += " #" + strconv.Itoa(index)
	}
	return name
}

// Abbrev returns the short property name used in validation messages.
func Abbrev(id string) string {
	code, index, indexed := SplitID(id)
	name := "(unknown)"
	switch code {
	case CodeBOM:
		name = "Bom"
	case CodePos:
		name = "Pos"
	case CodeFit:
		name = "Fit"
	case CodeSolder:
		name = "Solder"
	case CodeModel:
		name = "Model"
	}
	if indexed {
		name += "#" + strconv.Itoa(index)
	}
	return name
}
