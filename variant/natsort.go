package variant

import (
	"sort"
	"strings"
	"unicode"
)

// naturalLess compares two strings so that embedded numbers order
// numerically ("C2" < "C10") and letters compare case-insensitively.
// Digit runs sort before any non-digit at the same position.
func naturalLess(a, b string) bool {
	ra, rb := []rune(a), []rune(b)
	i, j := 0, 0
	for i < len(ra) && j < len(rb) {
		ca, cb := ra[i], rb[j]
		da, db := unicode.IsDigit(ca), unicode.IsDigit(cb)
		switch {
		case da && db:
			// compare whole digit runs numerically
			si := i
			for i < len(ra) && unicode.IsDigit(ra[i]) {
				i++
			}
			sj := j
			for j < len(rb) && unicode.IsDigit(rb[j]) {
				j++
			}
			na := strings.TrimLeft(string(ra[si:i]), "0")
			nb := strings.TrimLeft(string(rb[sj:j]), "0")
			if na != nb {
				if len(na) != len(nb) {
					return len(na) < len(nb)
				}
				return na < nb
			}
		case da != db:
			return da
		default:
			la, lb := unicode.ToLower(ca), unicode.ToLower(cb)
			if la != lb {
				return la < lb
			}
			i++
			j++
		}
	}
	return len(ra)-i < len(rb)-j
}

// sortNatural sorts a string slice in natural order, in place.
func sortNatural(items []string) {
	sort.SliceStable(items, func(i, j int) bool {
		return naturalLess(items[i], items[j])
	})
}
