package variant

import (
	"fmt"
	"sort"
)

// Kind categorizes engine errors for programmatic handling.
type Kind string

const (
	// KindSyntax marks grammar violations inside one rule record. The
	// record is dead, other records keep parsing.
	KindSyntax Kind = "syntax"
	// KindValidation marks structural model problems. Validation errors
	// are collected, and any presence invalidates the whole model.
	KindValidation Kind = "validation"
	// KindTable marks variant-table structural problems. Collected,
	// block-all.
	KindTable Kind = "table"
)

// Error is an engine error attributed to the component (and, via the
// message, the field) it originates from. Design-wide errors carry no
// component context.
type Error struct {
	Kind        Kind
	ComponentID string
	Ref         string
	Message     string
}

func (e *Error) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("%s: %s", e.Ref, e.Message)
	}
	return e.Message
}

func syntaxErr(id, ref, format string, args ...interface{}) *Error {
	return &Error{Kind: KindSyntax, ComponentID: id, Ref: ref, Message: fmt.Sprintf(format, args...)}
}

func validationErr(id, ref, format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, ComponentID: id, Ref: ref, Message: fmt.Sprintf(format, args...)}
}

func tableErr(format string, args ...interface{}) *Error {
	return &Error{Kind: KindTable, Message: fmt.Sprintf(format, args...)}
}

// TableError builds a variant-table error. Exported for the table package.
func TableError(format string, args ...interface{}) *Error {
	return tableErr(format, args...)
}

// SortErrors orders an error list for presentation: design-wide errors
// first, then by natural order of the component reference. The relative
// order of equal keys is preserved.
func SortErrors(errs []*Error) {
	sort.SliceStable(errs, func(i, j int) bool {
		if errs[i].Ref != errs[j].Ref {
			return naturalLess(errs[i].Ref, errs[j].Ref)
		}
		return false
	})
}

// ErrorStrings renders an error list.
func ErrorStrings(errs []*Error) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}
