package prop

// TriState is a boolean with an explicit "unknown/unspecified" variant.
// The zero value is StateUnset, so absent map entries read as unspecified.
type TriState uint8

const (
	StateUnset TriState = iota
	StateFalse
	StateTrue
)

// StateOf converts a plain bool to a known TriState.
func StateOf(b bool) TriState {
	if b {
		return StateTrue
	}
	return StateFalse
}

// Known reports whether the state is specified.
func (t TriState) Known() bool {
	return t != StateUnset
}

// Bool returns the boolean value of a known state. Unset reads as false.
func (t TriState) Bool() bool {
	return t == StateTrue
}

func (t TriState) String() string {
	switch t {
	case StateFalse:
		return "false"
	case StateTrue:
		return "true"
	}
	return "unset"
}
