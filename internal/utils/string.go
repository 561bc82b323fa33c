package utils

import (
	"unicode"
)

// CapitalPositions records which rune positions of s are upper case.
func CapitalPositions(s string) []bool {
	positions := make([]bool, 0, len(s))
	hasUpper := false
	for _, r := range s {
		up := unicode.IsUpper(r)
		hasUpper = hasUpper || up
		positions = append(positions, up)
	}
	if !hasUpper {
		return nil
	}
	return positions
}

// ApplyCapitalization upper-cases the runes of word at the positions that
// were capitals in the typed text.
func ApplyCapitalization(word string, capitalPositions []bool) string {
	if len(capitalPositions) == 0 {
		return word
	}

	wordRunes := []rune(word)
	for i := 0; i < len(wordRunes) && i < len(capitalPositions); i++ {
		if capitalPositions[i] {
			wordRunes[i] = unicode.ToUpper(wordRunes[i])
		}
	}
	return string(wordRunes)
}
