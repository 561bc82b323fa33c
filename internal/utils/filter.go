package utils

import (
	"unicode"
	"unicode/utf8"
)

// IsDotRune reports whether r is a braille dot digit 1-6.
func IsDotRune(r rune) bool {
	return r >= '1' && r <= '6'
}

// IsDotStream reports whether s holds at least one dot digit and otherwise
// only dot digits and whitespace.
func IsDotStream(s string) bool {
	dots := 0
	for _, r := range s {
		switch {
		case IsDotRune(r):
			dots++
		case unicode.IsSpace(r):
		default:
			return false
		}
	}
	return dots > 0
}

// IsWordInput checks if s can be looked up as a word: valid UTF-8, not
// longer than maxLen runes, and made of letters plus the odd apostrophe or
// hyphen.
func IsWordInput(s string, maxLen int) bool {
	if s == "" || !utf8.ValidString(s) {
		return false
	}
	if maxLen > 0 && utf8.RuneCountInString(s) > maxLen {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && r != '\'' && r != '-' {
			return false
		}
	}
	return true
}

// LastWord returns the text after the final space of s.
func LastWord(s string) string {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ' ' {
			return s[i+1:]
		}
	}
	return s
}
