package suggest

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/bastiangx/brailleserve/internal/utils"
	"github.com/charmbracelet/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Defaults for a Suggester.
const (
	DefaultLimit            = 5
	DefaultMaxDistance      = 2
	DefaultShortMaxDistance = 1
	DefaultShortLength      = 2
)

// Suggestion is a suggested word and its edit distance from the input.
// Distance 0 means the word extends the input as a prefix.
type Suggestion struct {
	Word     string
	Distance int
}

// Match is a fuzzy hit with the data it was ranked on.
type Match struct {
	Word     string
	Distance int
	LenDiff  int
}

// Suggester ranks dictionary words for a partially typed word. It prefers
// prefix matches from the trie, then a plain prefix scan for very short
// input, then whole-word edit distance.
type Suggester struct {
	Limit            int
	MaxDistance      int
	ShortMaxDistance int
	ShortLength      int
}

// NewSuggester returns a Suggester with the default policy.
func NewSuggester() *Suggester {
	return &Suggester{
		Limit:            DefaultLimit,
		MaxDistance:      DefaultMaxDistance,
		ShortMaxDistance: DefaultShortMaxDistance,
		ShortLength:      DefaultShortLength,
	}
}

// Lower folds s to lower case.
func Lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// Suggest returns at most Limit words for partial.
//
// Prefix matches short-circuit everything else and come back shortest first.
// When there are none and the input is at most ShortLength runes long, the
// first words of the list starting with the input are used. Otherwise words
// within the edit distance threshold are returned by closeness. Results never
// repeat a word.
func (s *Suggester) Suggest(partial string, trie *Trie, words []string) []string {
	if partial == "" {
		return []string{}
	}
	lower := Lower(partial)

	if trie != nil {
		if prefixed := trie.WordsWithPrefix(lower); len(prefixed) > 0 {
			sort.SliceStable(prefixed, func(i, j int) bool {
				return utf8.RuneCountInString(prefixed[i]) < utf8.RuneCountInString(prefixed[j])
			})
			return s.truncate(dedupe(prefixed))
		}
	}

	if n := utf8.RuneCountInString(lower); n <= s.shortLength() && len(words) > 0 {
		short := make([]string, 0, s.limit())
		filter := utils.NewSuggestionFilter("")
		for _, w := range words {
			if len(short) == s.limit() {
				break
			}
			if strings.HasPrefix(Lower(w), lower) && filter.ShouldInclude(w) {
				short = append(short, w)
			}
		}
		if len(short) > 0 {
			return short
		}
		log.Debugf("No short prefix match for '%s', trying fuzzy", lower)
	}

	matches := s.Fuzzy(lower, words)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Word)
	}
	return s.truncate(dedupe(out))
}

// Ranked is Suggest with distances attached. Prefix and short-input matches
// report distance 0.
func (s *Suggester) Ranked(partial string, trie *Trie, words []string) []Suggestion {
	lower := Lower(partial)
	list := s.Suggest(partial, trie, words)
	out := make([]Suggestion, len(list))
	for i, w := range list {
		d := 0
		if !strings.HasPrefix(Lower(w), lower) {
			d = Distance(lower, Lower(w))
		}
		out[i] = Suggestion{Word: w, Distance: d}
	}
	return out
}

// Fuzzy compares input with every word, case-insensitively, and returns all
// words within the threshold: ShortMaxDistance for input of at most
// ShortLength runes, MaxDistance otherwise. Matches are ordered by distance,
// then by length difference, then alphabetically.
func (s *Suggester) Fuzzy(input string, words []string) []Match {
	if input == "" || len(words) == 0 {
		return nil
	}
	lower := Lower(input)
	inLen := utf8.RuneCountInString(lower)

	maxDist := s.MaxDistance
	if inLen <= s.shortLength() {
		maxDist = s.ShortMaxDistance
	}

	var matches []Match
	for _, w := range words {
		d := Distance(lower, Lower(w))
		if d > maxDist {
			continue
		}
		matches = append(matches, Match{
			Word:     w,
			Distance: d,
			LenDiff:  absDiff(utf8.RuneCountInString(w), inLen),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		if a.LenDiff != b.LenDiff {
			return a.LenDiff < b.LenDiff
		}
		return a.Word < b.Word
	})
	return matches
}

func (s *Suggester) truncate(list []string) []string {
	if n := s.limit(); len(list) > n {
		return list[:n]
	}
	return list
}

func (s *Suggester) limit() int {
	if s.Limit < 1 {
		return DefaultLimit
	}
	return s.Limit
}

func (s *Suggester) shortLength() int {
	if s.ShortLength < 0 {
		return DefaultShortLength
	}
	return s.ShortLength
}

// dedupe drops repeated words, keeping the first occurrence.
func dedupe(list []string) []string {
	filter := utils.NewSuggestionFilter("")
	out := list[:0]
	for _, w := range list {
		if filter.ShouldInclude(w) {
			out = append(out, w)
		}
	}
	return out
}
