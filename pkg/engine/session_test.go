package engine

import (
	"testing"

	"github.com/bastiangx/brailleserve/pkg/braille"
	"github.com/bastiangx/brailleserve/pkg/dictionary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, words ...string) *Session {
	t.Helper()
	reg := dictionary.NewRegistry(words, dictionary.DefaultOptions())
	return New(braille.DefaultTable(), braille.DefaultKeyMap(), reg, DefaultOptions())
}

func TestPressChordTypesLetters(t *testing.T) {
	s := newSession(t, "hello", "help", "held", "cat")

	// h = 1,2,5 on the home row is a s k
	res := s.PressChord([]string{"k", "a", "s"})
	require.True(t, res.Accepted)
	assert.True(t, res.Exact)
	assert.Equal(t, "h", res.Char)
	assert.Equal(t, "h", res.Text)
	assert.Equal(t, []string{"help", "held", "hello"}, res.Suggestions)

	res = s.PressDots([]int{5, 1})
	require.True(t, res.Accepted)
	assert.Equal(t, "he", res.Text)

	s.PressDots([]int{1, 2, 3})
	res = s.PressDots([]int{1, 2, 3, 4})
	assert.Equal(t, "help", res.Text)
	assert.Equal(t, []string{"help"}, res.Suggestions)
}

func TestPressEmptyChordIsIgnored(t *testing.T) {
	s := newSession(t, "cat")
	s.Type("ca")

	res := s.PressChord([]string{"q", "space"})
	assert.False(t, res.Accepted)
	assert.Empty(t, res.Candidates)
	assert.Equal(t, "ca", res.Text)
	assert.Equal(t, []string{"cat"}, res.Suggestions)

	res = s.PressDots(nil)
	assert.Equal(t, "ca", res.Text)
}

func TestPressFuzzyChord(t *testing.T) {
	s := newSession(t, "apple")

	// dot 6 alone is not a letter; "a" is one edit away
	res := s.PressDots([]int{6})
	assert.False(t, res.Exact)
	require.True(t, res.Accepted)
	assert.Equal(t, "a", res.Char)
	assert.Len(t, res.Candidates, 3)
	assert.Equal(t, []string{"apple"}, res.Suggestions)
}

func TestPressRejectedChord(t *testing.T) {
	table, err := braille.NewTable([]braille.Entry{{Pattern: braille.PatternOf(1, 2, 3, 4, 5), Char: "q"}})
	require.NoError(t, err)
	reg := dictionary.NewRegistry([]string{"queen"}, dictionary.DefaultOptions())
	s := New(table, nil, reg, DefaultOptions())

	res := s.PressDots([]int{6})
	assert.False(t, res.Accepted)
	require.NotEmpty(t, res.Candidates)
	assert.Equal(t, "q", res.Candidates[0].Char)
	assert.Empty(t, res.Text)
}

func TestTypeAndEditing(t *testing.T) {
	s := newSession(t, "cat", "car", "cart", "dog")

	assert.Equal(t, []string{"cat", "car", "cart"}, s.Type("my ca"))
	assert.Equal(t, "ca", s.CurrentWord())

	s.Backspace()
	assert.Equal(t, "my c", s.Text())
	assert.Equal(t, []string{"cat", "car", "cart"}, s.Suggestions())

	s.Space()
	assert.Equal(t, "my c ", s.Text())
	assert.Empty(t, s.Suggestions())

	s.Clear()
	assert.Empty(t, s.Text())
	s.Backspace()
	assert.Empty(t, s.Text())

	assert.Empty(t, s.Type("12345"))
	assert.Empty(t, s.Type(""))
}

func TestApplyKeepsCapitals(t *testing.T) {
	s := newSession(t, "dog", "door")

	s.Type("the Do")
	assert.Equal(t, "the Dog ", s.Apply("dog"))
	assert.Empty(t, s.Suggestions())

	s.Type("ca")
	assert.Equal(t, "cat ", s.Apply("cat"))
	assert.Equal(t, "cat ", s.Apply(""))
}

func TestSuggestionsFollowDictionarySwitch(t *testing.T) {
	s := newSession(t, "cat", "car")
	assert.Equal(t, []string{"cat", "car"}, s.Type("ca"))

	_, err := s.Registry().UploadWords("pets", []string{"canary"})
	require.NoError(t, err)
	assert.Equal(t, []string{"canary"}, s.Type("ca"))

	_, err = s.Registry().Switch(dictionary.KindDefault)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "car"}, s.Type("ca"))
}

func TestSuggestionsRefreshAfterSwitchWithoutEditing(t *testing.T) {
	s := newSession(t, "cat", "car")
	assert.Equal(t, []string{"cat", "car"}, s.Type("ca"))

	_, err := s.Registry().UploadWords("pets", []string{"dog", "canary"})
	require.NoError(t, err)

	res := s.PressDots(nil)
	assert.Equal(t, "ca", res.Text)
	assert.Equal(t, []string{"canary"}, res.Suggestions)
	assert.Equal(t, []string{"canary"}, s.Suggestions())

	// a rejected chord leaves the text alone but still sees the new list
	_, err = s.Registry().Switch(dictionary.KindDefault)
	require.NoError(t, err)
	rejected := New(braille.DefaultTable(), nil, s.Registry(), Options{AcceptDistance: 0})
	rejected.Type("ca")
	_, err = s.Registry().Switch(dictionary.KindCustom)
	require.NoError(t, err)
	res = rejected.PressDots([]int{6})
	require.False(t, res.Accepted)
	assert.Equal(t, []string{"canary"}, res.Suggestions)
}

func TestSuggestionsAreCached(t *testing.T) {
	s := newSession(t, "cat", "car")
	s.Type("ca")
	s.Type("ca")

	stats := s.Registry().Active().Cache.Stats()
	assert.Equal(t, 1, stats["cacheEntries"])
	assert.Equal(t, 1, stats["cacheHits"])

	// callers cannot reach into the cache
	got := s.Suggestions()
	got[0] = "mutated"
	assert.Equal(t, []string{"cat", "car"}, s.Type("ca"))
}

func TestBestGuessAndQueries(t *testing.T) {
	s := newSession(t, "hello", "help")

	cells := []braille.Pattern{
		braille.PatternOf(1, 2, 5),
		braille.PatternOf(1, 5),
		braille.PatternOf(1, 2, 3),
		braille.PatternOf(1, 2, 3, 6), // v, not l
		0,
	}
	assert.Equal(t, "helv", s.BestGuess(cells))

	ranked := s.SuggestWord("helo")
	require.Len(t, ranked, 2)
	assert.Equal(t, "help", ranked[0].Word)
	assert.Equal(t, 1, ranked[0].Distance)
	assert.Empty(t, s.SuggestWord("h3llo"))
	assert.Empty(t, s.Text(), "queries leave the text alone")

	assert.True(t, s.Resolve("125").Exact)

	p, ok := s.PatternFor("h")
	require.True(t, ok)
	assert.Equal(t, "1,2,5", p.String())
	_, ok = s.PatternFor("?")
	assert.False(t, ok)
	assert.Equal(t, "hello", s.Decode("125 15 123 123 135").Text)
}
