package prop

import (
	"math"
	"strconv"
)

// The solder paste property is a boolean with memory, encoded in the host
// format's signed paste-margin ratio. A nil ratio means "inherited" (paste
// on); an explicit small ratio means paste on with that margin; the two OFF
// encodings park the previous state at a far-negative offset so it can be
// restored exactly. This is a compatibility encoding with the host file
// format and must not be normalized away.
const (
	PasteOffset     = -42000.0
	PasteTolerance  = 100.0
	PasteInherit    = -42420.0
	PasteInheritEps = 0.1
)

// PasteMode classifies a raw margin ratio into one of the four recognized
// bands, or Invalid.
type PasteMode int

const (
	PasteInvalid PasteMode = iota
	PasteOnIsInherit
	PasteOnWithRatio
	PasteOffWasInherit
	PasteOffWasRatio
)

// PasteModeFromRatio classifies a raw ratio. nil means the ratio is
// inherited from the parent scope.
func PasteModeFromRatio(ratio *float64) PasteMode {
	if ratio == nil {
		return PasteOnIsInherit
	}
	r := *ratio
	switch {
	case r <= PasteTolerance && r >= -PasteTolerance:
		return PasteOnWithRatio
	case r <= PasteInherit+PasteInheritEps && r >= PasteInherit-PasteInheritEps:
		return PasteOffWasInherit
	case r <= PasteOffset+PasteTolerance && r >= PasteOffset-PasteTolerance:
		return PasteOffWasRatio
	}
	return PasteInvalid
}

// PasteStateFromRatio derives the boolean paste state from a raw ratio.
// Unclassifiable ratios yield StateUnset.
func PasteStateFromRatio(ratio *float64) TriState {
	switch PasteModeFromRatio(ratio) {
	case PasteOnIsInherit, PasteOnWithRatio:
		return StateTrue
	case PasteOffWasInherit, PasteOffWasRatio:
		return StateFalse
	}
	return StateUnset
}

// PasteRatioText renders a raw ratio for human-readable messages.
func PasteRatioText(ratio *float64) string {
	if ratio == nil {
		return "Inherited"
	}
	pct := math.Round(*ratio*100*1e6) / 1e6
	return strconv.FormatFloat(pct, 'f', -1, 64) + "%"
}
