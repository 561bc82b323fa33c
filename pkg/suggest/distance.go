package suggest

import "github.com/hbollon/go-edlib"

// Distance is the Levenshtein distance between a and b counted in runes.
// Insertions, deletions and substitutions each cost 1. No case folding is
// done here.
func Distance(a, b string) int {
	return edlib.LevenshteinDistance(a, b)
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
