// Package suggest ranks dictionary words for a partially typed word, using a patricia trie for prefix lookups and Levenshtein distance as the fuzzy fallback.
package suggest

// ISuggester is what the session and the servers need from a word ranker.
type ISuggester interface {
	// Suggest returns the ranked words for partial.
	Suggest(partial string, trie *Trie, words []string) []string

	// Ranked returns the same words with their distances.
	Ranked(partial string, trie *Trie, words []string) []Suggestion

	// Fuzzy returns every word within the distance threshold.
	Fuzzy(input string, words []string) []Match
}

var _ ISuggester = (*Suggester)(nil)
