package variant

import (
	"strings"

	"github.com/teranos/KVAR/errors"
	"github.com/teranos/KVAR/prop"
)

// PropSet maps property ids to their requested states. Entries are only
// ever added with known states; an absent id means unspecified.
type PropSet map[string]prop.TriState

// ParsePropSpec parses one property-specifier token, e.g. "+F-B+M2", into
// the caller-owned set. A sign sets the active state, a code commits that
// state to the property id, an indexed code must be directly followed by
// its slot index. The group alias fans out to its base codes atomically.
//
// The set is mutated as assignments are parsed; duplicate assignment of the
// same id within one argument list is the caller's validation error, not a
// parse error here (later records may legitimately re-state properties).
func ParsePropSpec(spec string, set PropSet) error {
	state := prop.StateUnset
	expectCode := false
	expectIndex := false
	pendingCode := rune(0)
	pendingIndex := -1

	commitPending := func() {
		if pendingCode != 0 && pendingIndex >= 0 {
			set[prop.IndexedID(pendingCode, pendingIndex)] = state
		}
	}

	for _, c := range strings.ToUpper(spec) {
		switch {
		case c == '+' || c == '-':
			if expectCode {
				return errors.New("got property modifier where property identifier was expected")
			}
			if expectIndex {
				return errors.New("got property modifier where property index was expected")
			}
			commitPending()
			pendingCode, pendingIndex = 0, -1
			expectCode = true
			state = prop.StateOf(c == '+')
		case prop.Supported(c):
			if expectIndex {
				return errors.New("got property code where property index was expected")
			}
			if !state.Known() {
				// unreachable via the record parser, which routes only
				// +/- prefixed tokens here
				return errors.Newf("undefined property modifier for identifier '%c'", c)
			}
			commitPending()
			pendingCode, pendingIndex = 0, -1
			expectCode = false
			if prop.Indexed(c) {
				pendingCode = c
				pendingIndex = 0
				expectIndex = true
			} else if c == prop.GroupAssemble {
				for _, base := range prop.AssembleCodes() {
					set[string(base)] = state
				}
			} else {
				set[string(c)] = state
			}
		case c >= '0' && c <= '9':
			if pendingCode == 0 || pendingIndex < 0 {
				return errors.New("got unexpected property index")
			}
			pendingIndex = pendingIndex*10 + int(c-'0')
			if pendingIndex > prop.MaxIndex {
				return errors.Newf("index value for property code '%c' is too high", pendingCode)
			}
			expectIndex = false
		default:
			return errors.Newf("unsupported property code '%c'", c)
		}
	}
	commitPending()
	if expectCode {
		return errors.New("end of property specifier where property code was expected")
	}
	if expectIndex {
		return errors.New("end of property specifier where property index was expected")
	}
	return nil
}
