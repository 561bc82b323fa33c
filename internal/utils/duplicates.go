package utils

import (
	"strings"
)

// SuggestionFilter drops repeated words from a suggestion list. Words are
// compared case-insensitively. It is not safe for concurrent use.
type SuggestionFilter struct {
	seenWords map[string]struct{}
}

// NewSuggestionFilter creates a filter that also rejects the given words,
// e.g. the word being typed.
func NewSuggestionFilter(exclude ...string) *SuggestionFilter {
	f := &SuggestionFilter{seenWords: make(map[string]struct{}, 8)}
	for _, w := range exclude {
		if w != "" {
			f.seenWords[strings.ToLower(w)] = struct{}{}
		}
	}
	return f
}

// ShouldInclude reports whether word has not been seen yet and records it.
func (f *SuggestionFilter) ShouldInclude(word string) bool {
	lowerWord := strings.ToLower(word)
	if _, seen := f.seenWords[lowerWord]; seen {
		return false
	}
	f.seenWords[lowerWord] = struct{}{}
	return true
}
