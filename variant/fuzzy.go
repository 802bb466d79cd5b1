package variant

import (
	"fmt"

	"github.com/agext/levenshtein"
)

// suggestionCutoff is the minimum similarity for a "did you mean"
// suggestion.
const suggestionCutoff = 0.6

// DidYouMean returns a suggestion suffix for an unrecognized name, or ""
// when no option is close enough. The returned text includes a leading
// space so it can be appended directly to an error message.
func DidYouMean(input string, options []string) string {
	best := ""
	bestScore := suggestionCutoff
	for _, option := range options {
		score := levenshtein.Similarity(input, option, nil)
		if score >= bestScore {
			best = option
			bestScore = score
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf(" Did you mean %q?", best)
}
