// Package engine holds the typing session: chords come in, letters and word
// suggestions come out.
package engine

import (
	"strings"
	"unicode/utf8"

	"github.com/bastiangx/brailleserve/internal/logger"
	"github.com/bastiangx/brailleserve/internal/utils"
	"github.com/bastiangx/brailleserve/pkg/braille"
	"github.com/bastiangx/brailleserve/pkg/dictionary"
	"github.com/bastiangx/brailleserve/pkg/suggest"
	"github.com/charmbracelet/log"
)

// Options tunes a Session.
type Options struct {
	// AcceptDistance is the largest edit distance at which a fuzzy chord
	// still produces a letter.
	AcceptDistance int
	// CharCandidates is how many letters a fuzzy resolution reports.
	CharCandidates int
	// MaxWordLen bounds the word that is looked up; longer words get no
	// suggestions.
	MaxWordLen int
	Suggester  suggest.ISuggester
}

// DefaultOptions returns the stock session settings.
func DefaultOptions() Options {
	return Options{
		AcceptDistance: 2,
		CharCandidates: braille.DefaultCandidates,
		MaxWordLen:     60,
		Suggester:      suggest.NewSuggester(),
	}
}

// ChordResult reports what one chord did to the session.
type ChordResult struct {
	Pattern     braille.Pattern
	Char        string
	Accepted    bool
	Exact       bool
	Candidates  []braille.Candidate
	Text        string
	Suggestions []string
}

// Session is one user's typing state. It is not safe for concurrent use;
// the Registry it reads from is.
type Session struct {
	keymap    *braille.KeyMap
	resolver  *braille.Resolver
	registry  *dictionary.Registry
	suggester suggest.ISuggester
	opts      Options
	log       *log.Logger

	text        string
	suggestions []string
	// generation of the snapshot suggestions were computed from
	generation uint64
}

// New creates a Session. A nil keymap or suggester falls back to the
// defaults.
func New(table *braille.Table, keymap *braille.KeyMap, registry *dictionary.Registry, opts Options) *Session {
	if keymap == nil {
		keymap = braille.DefaultKeyMap()
	}
	if opts.Suggester == nil {
		opts.Suggester = suggest.NewSuggester()
	}
	if opts.AcceptDistance < 0 {
		opts.AcceptDistance = 0
	}
	return &Session{
		keymap:      keymap,
		resolver:    braille.NewResolver(table, opts.CharCandidates),
		registry:    registry,
		suggester:   opts.Suggester,
		opts:        opts,
		log:         logger.New("engine"),
		suggestions: []string{},
	}
}

// PressChord resolves the keys of one settled chord.
func (s *Session) PressChord(keys []string) ChordResult {
	return s.press(s.keymap.Normalize(keys))
}

// PressDots resolves a chord given as dot numbers.
func (s *Session) PressDots(dots []int) ChordResult {
	return s.press(braille.NormalizeDots(dots))
}

// PressPattern resolves an already normalized cell.
func (s *Session) PressPattern(p braille.Pattern) ChordResult {
	return s.press(p)
}

func (s *Session) press(p braille.Pattern) ChordResult {
	res := ChordResult{Pattern: p}
	if p.IsEmpty() {
		res.Text, res.Suggestions = s.text, s.Suggestions()
		return res
	}

	resolution := s.resolver.Resolve(p)
	res.Exact = resolution.Exact
	res.Candidates = resolution.Candidates

	if char, ok := resolution.Accept(s.opts.AcceptDistance); ok {
		res.Char, res.Accepted = char, true
		s.text += char
		s.refresh()
	} else {
		s.log.Debug("No suitable match", "dots", p.String())
	}

	res.Text, res.Suggestions = s.text, s.Suggestions()
	return res
}

// Type replaces the composed text, as if typed into an input box, and
// recomputes suggestions for its last word.
func (s *Session) Type(text string) []string {
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "")
	}
	s.text = text
	s.refresh()
	return s.Suggestions()
}

// Space finishes the current word.
func (s *Session) Space() {
	s.text += " "
	s.refresh()
}

// Backspace removes the last character.
func (s *Session) Backspace() {
	if s.text == "" {
		return
	}
	_, size := utf8.DecodeLastRuneInString(s.text)
	s.text = s.text[:len(s.text)-size]
	s.refresh()
}

// Apply replaces the current word with suggestion, keeping the capitals the
// user typed, and starts a new word.
func (s *Session) Apply(suggestion string) string {
	if suggestion == "" {
		return s.text
	}
	current := s.CurrentWord()
	word := utils.ApplyCapitalization(suggestion, utils.CapitalPositions(current))
	s.text = s.text[:len(s.text)-len(current)] + word + " "
	s.refresh()
	return s.text
}

// Clear empties the session.
func (s *Session) Clear() {
	s.text = ""
	s.refresh()
}

// Text returns the composed text.
func (s *Session) Text() string {
	return s.text
}

// CurrentWord returns the word being typed.
func (s *Session) CurrentWord() string {
	return utils.LastWord(s.text)
}

// Suggestions returns a copy of the suggestions for the current word. They
// are recomputed first if the active dictionary changed since the last edit.
func (s *Session) Suggestions() []string {
	if s.registry.Active().Generation != s.generation {
		s.refresh()
	}
	out := make([]string, len(s.suggestions))
	copy(out, s.suggestions)
	return out
}

// BestGuess spells the word made of the closest letter for every cell,
// however far it is. Cells with no candidate are skipped.
func (s *Session) BestGuess(cells []braille.Pattern) string {
	var b strings.Builder
	for _, p := range cells {
		if best, ok := s.resolver.Resolve(p).Best(); ok {
			b.WriteString(best.Char)
		}
	}
	return b.String()
}

// SuggestWord ranks words for word against the active dictionary without
// touching the session text.
func (s *Session) SuggestWord(word string) []suggest.Suggestion {
	if !utils.IsWordInput(word, s.opts.MaxWordLen) {
		return []suggest.Suggestion{}
	}
	snap := s.registry.Active()
	return s.suggester.Ranked(word, snap.Trie, snap.Words)
}

// Resolve resolves a pattern string such as "1,2,4" or "124".
func (s *Session) Resolve(pattern string) braille.Resolution {
	return s.resolver.ResolveString(pattern)
}

// ResolvePattern ranks letters for p without typing anything.
func (s *Session) ResolvePattern(p braille.Pattern) braille.Resolution {
	return s.resolver.Resolve(p)
}

// PatternFor returns the cell that types char.
func (s *Session) PatternFor(char string) (braille.Pattern, bool) {
	if s.resolver.Table == nil {
		return 0, false
	}
	return s.resolver.Table.PatternFor(char)
}

// AcceptDistance is the largest distance at which a cell becomes a letter.
func (s *Session) AcceptDistance() int {
	return s.opts.AcceptDistance
}

// Decode decodes a raw dot stream with the session's accept distance.
func (s *Session) Decode(stream string) braille.Decoded {
	return braille.DecodeStream(stream, s.resolver, s.opts.AcceptDistance)
}

// Registry returns the dictionary registry the session reads from.
func (s *Session) Registry() *dictionary.Registry {
	return s.registry
}

// refresh recomputes suggestions for the current word against the active
// snapshot, going through that snapshot's cache.
func (s *Session) refresh() {
	snap := s.registry.Active()
	s.generation = snap.Generation

	word := s.CurrentWord()
	if !utils.IsWordInput(word, s.opts.MaxWordLen) {
		s.suggestions = []string{}
		return
	}

	key := suggest.Lower(word)
	if cached, ok := snap.Cache.Get(key); ok {
		s.suggestions = cached
		return
	}
	s.suggestions = s.suggester.Suggest(word, snap.Trie, snap.Words)
	snap.Cache.Put(key, s.suggestions)
}
