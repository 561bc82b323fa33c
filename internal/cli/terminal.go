package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bastiangx/brailleserve/pkg/braille"
	"github.com/bastiangx/brailleserve/pkg/engine"
	"github.com/charmbracelet/log"
	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/term"
)

// ErrNotTerminal is returned when raw mode is asked for without a terminal.
var ErrNotTerminal = errors.New("raw chord mode needs a terminal on stdin")

// Control keys understood in raw mode.
const (
	keyCtrlC     = 0x03
	keyBackspace = 0x08
	keyTab       = '\t'
	keyLF        = '\n'
	keyCR        = '\r'
	keyEsc       = 0x1b
	keySpace     = ' '
	keyDelete    = 0x7f
)

// ChordAssembler collects the keys of one chord. Terminals report key
// presses one at a time, so keys pressed within the chord timeout of each
// other count as held together.
type ChordAssembler struct {
	keymap *braille.KeyMap
	held   mapset.Set[string]
}

// NewChordAssembler creates an assembler for keymap.
func NewChordAssembler(keymap *braille.KeyMap) *ChordAssembler {
	if keymap == nil {
		keymap = braille.DefaultKeyMap()
	}
	return &ChordAssembler{keymap: keymap, held: mapset.NewThreadUnsafeSet[string]()}
}

// Add records key if it is one of the layout keys.
func (a *ChordAssembler) Add(key string) bool {
	if _, ok := a.keymap.Dot(key); !ok {
		return false
	}
	a.held.Add(strings.ToLower(key))
	return true
}

// Pending reports whether a chord is being assembled.
func (a *ChordAssembler) Pending() bool {
	return a.held.Cardinality() > 0
}

// Take returns the held keys and starts a new chord.
func (a *ChordAssembler) Take() []string {
	keys := a.held.ToSlice()
	a.held.Clear()
	return keys
}

// Drop forgets the chord being assembled.
func (a *ChordAssembler) Drop() {
	a.held.Clear()
}

// RawHandler types chords straight from the keyboard. Space ends a word,
// tab cycles suggestions, enter applies the selected one, backspace deletes
// and esc quits.
type RawHandler struct {
	session        *engine.Session
	chord          *ChordAssembler
	timeout        time.Duration
	showCandidates bool
	out            io.Writer

	selected int
	status   string
}

// NewRawHandler creates a raw mode handler writing to out.
func NewRawHandler(session *engine.Session, keymap *braille.KeyMap, timeout time.Duration, showCandidates bool, out io.Writer) *RawHandler {
	if timeout <= 0 {
		timeout = 300 * time.Millisecond
	}
	return &RawHandler{
		session:        session,
		chord:          NewChordAssembler(keymap),
		timeout:        timeout,
		showCandidates: showCandidates,
		out:            out,
	}
}

// Start puts stdin in raw mode and runs until esc or ctrl+c.
func (h *RawHandler) Start() error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return ErrNotTerminal
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	defer term.Restore(fd, state)

	fmt.Fprint(h.out, "brailleserve raw mode: chord with your layout keys, space ends a word, tab/enter pick a suggestion, esc quits\r\n")
	err = h.Run(os.Stdin)
	fmt.Fprint(h.out, "\r\n")
	return err
}

// Run reads single bytes from in. A chord is settled once no new key
// arrives within the timeout, or when a control key is pressed.
func (h *RawHandler) Run(in io.Reader) error {
	keys := make(chan byte)
	errc := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := in.Read(buf)
			if n > 0 {
				select {
				case keys <- buf[0]:
				case <-done:
					return
				}
			}
			if err != nil {
				errc <- err
				return
			}
		}
	}()

	timer := time.NewTimer(h.timeout)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case b := <-keys:
			if quit := h.handleKey(b); quit {
				h.settle()
				return nil
			}
			if h.chord.Pending() {
				timer.Reset(h.timeout)
			}
		case <-timer.C:
			h.settle()
			h.render()
		case err := <-errc:
			h.settle()
			h.render()
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// handleKey applies one key press and reports whether to quit.
func (h *RawHandler) handleKey(b byte) bool {
	switch b {
	case keyCtrlC, keyEsc:
		return true
	case keySpace:
		h.settle()
		h.session.Space()
		h.selected = 0
	case keyTab:
		h.settle()
		if n := len(h.session.Suggestions()); n > 0 {
			h.selected = (h.selected + 1) % n
		}
	case keyCR, keyLF:
		h.settle()
		if suggestions := h.session.Suggestions(); len(suggestions) > 0 {
			h.session.Apply(suggestions[h.selected%len(suggestions)])
			h.selected = 0
		}
	case keyDelete, keyBackspace:
		if h.chord.Pending() {
			h.chord.Drop()
		} else {
			h.session.Backspace()
			h.selected = 0
		}
	default:
		if !h.chord.Add(string(rune(b))) {
			log.Debugf("Ignoring key %q", b)
		}
		return false
	}
	h.render()
	return false
}

// settle types the pending chord, if any.
func (h *RawHandler) settle() {
	if !h.chord.Pending() {
		return
	}
	res := h.session.PressChord(h.chord.Take())
	h.selected = 0
	switch {
	case res.Accepted && !res.Exact:
		h.status = fmt.Sprintf("%s read as %s", res.Pattern.String(), res.Char)
	case res.Accepted:
		h.status = ""
	default:
		h.status = fmt.Sprintf("no suitable match for %s", res.Pattern.String())
	}
	if h.showCandidates && !res.Exact && len(res.Candidates) > 0 {
		var alts []string
		for _, c := range res.Candidates {
			alts = append(alts, fmt.Sprintf("%s(%d)", c.Char, c.Distance))
		}
		h.status += " [" + strings.Join(alts, " ") + "]"
	}
}

// render redraws the current line.
func (h *RawHandler) render() {
	var b strings.Builder
	b.WriteString("\r\033[K> ")
	b.WriteString(h.session.Text())

	if suggestions := h.session.Suggestions(); len(suggestions) > 0 {
		b.WriteString("   ")
		for i, s := range suggestions {
			if i == h.selected%len(suggestions) {
				s = wordStyle.Render("[" + s + "]")
			}
			b.WriteString(s + " ")
		}
	}
	if h.status != "" {
		b.WriteString("  " + dimStyle.Render(h.status))
	}
	fmt.Fprint(h.out, b.String())
}
