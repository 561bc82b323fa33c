package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bastiangx/brailleserve/pkg/braille"
	"github.com/bastiangx/brailleserve/pkg/dictionary"
	"github.com/bastiangx/brailleserve/pkg/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(words ...string) *engine.Session {
	reg := dictionary.NewRegistry(words, dictionary.DefaultOptions())
	return engine.New(braille.DefaultTable(), braille.DefaultKeyMap(), reg, engine.DefaultOptions())
}

func TestChordAssembler(t *testing.T) {
	a := NewChordAssembler(nil)
	assert.False(t, a.Pending())

	assert.True(t, a.Add("a"))
	assert.True(t, a.Add("K"))
	assert.True(t, a.Add("a"))
	assert.True(t, a.Add("2"))
	assert.False(t, a.Add("q"))
	assert.True(t, a.Pending())

	keys := a.Take()
	assert.ElementsMatch(t, []string{"a", "k", "2"}, keys)
	assert.Equal(t, "1,2,5", braille.DefaultKeyMap().Normalize(keys).String())
	assert.False(t, a.Pending())

	a.Add("s")
	a.Drop()
	assert.Empty(t, a.Take())
}

func TestRawHandlerTypesAndApplies(t *testing.T) {
	s := newSession("hello", "help", "held")
	var out bytes.Buffer
	h := NewRawHandler(s, nil, time.Hour, true, &out)

	// h, e, l each settled by tab; the last tab moves to the second suggestion
	require.NoError(t, h.Run(strings.NewReader("kas\tak\tasd\t\r")))
	assert.Equal(t, "held ", s.Text())
	assert.Contains(t, out.String(), "hel")
}

func TestRawHandlerEditing(t *testing.T) {
	s := newSession("hello")
	var out bytes.Buffer
	h := NewRawHandler(s, nil, time.Hour, false, &out)

	// a dropped chord, then h and a space, then backspace; esc stops reading
	require.NoError(t, h.Run(strings.NewReader("kas\x7fkas \x7f\x1bak")))
	assert.Equal(t, "h", s.Text())
}

func TestRawHandlerSettlesOnEOFAndTimeout(t *testing.T) {
	s := newSession("hello")
	h := NewRawHandler(s, nil, time.Hour, true, &bytes.Buffer{})
	require.NoError(t, h.Run(strings.NewReader("l")))
	// dot 6 alone is read as the closest letter
	assert.Equal(t, "a", s.Text())
	assert.Contains(t, h.status, "read as a")

	s = newSession("hello")
	h = NewRawHandler(s, nil, 20*time.Millisecond, false, &bytes.Buffer{})
	r, w, err := os.Pipe()
	require.NoError(t, err)
	done := make(chan error, 1)
	go func() { done <- h.Run(r) }()

	_, err = w.Write([]byte("kas"))
	require.NoError(t, err)
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, w.Close())
	require.NoError(t, <-done)
	assert.Equal(t, "h", s.Text())
}

func TestRawStartNeedsTerminal(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer w.Close()

	old := os.Stdin
	os.Stdin = r
	defer func() { os.Stdin = old }()

	h := NewRawHandler(newSession(), nil, 0, false, &bytes.Buffer{})
	assert.ErrorIs(t, h.Start(), ErrNotTerminal)
}

func TestInputHandler(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "pets.txt")
	require.NoError(t, os.WriteFile(list, []byte("canary\ncapybara\n"), 0o644))

	s := newSession("hello", "help", "held")
	var out bytes.Buffer
	h := NewInputHandlerWithWriter(s, true, &out)

	input := strings.Join([]string{
		"125 15 123 123 135",
		":word helo",
		":switch custom",
		":load " + list,
		"ca",
		":switch default",
		":bogus",
		"6",
	}, "\n")
	require.NoError(t, h.Run(strings.NewReader(input)))

	got := out.String()
	assert.Contains(t, got, "text:  hello")
	assert.Contains(t, got, "Found 3 suggestions for 'helo'")
	assert.Contains(t, got, "no custom dictionary loaded")
	assert.Contains(t, got, "active: custom")
	assert.Contains(t, got, "capybara")
	assert.Contains(t, got, "active: default")
	assert.Contains(t, got, "unknown command :bogus")
	assert.Contains(t, got, "6 -> a(1)")
	assert.Equal(t, 8, h.requestCount)
}

func TestInputHandlerDotsCommand(t *testing.T) {
	s := newSession("hello")
	var out bytes.Buffer
	h := NewInputHandlerWithWriter(s, false, &out)

	require.NoError(t, h.Run(strings.NewReader(":dots Hi!\n:help\n")))

	got := out.String()
	assert.Contains(t, got, "h  ⠓  1,2,5")
	assert.Contains(t, got, "i  ⠊  2,4")
	assert.Contains(t, got, "!  no cell")
	assert.Contains(t, got, ":dots <text>")
	assert.Empty(t, s.Text())
}
