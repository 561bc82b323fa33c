// Package cli handles cmd line input for trying the engine by hand: a line
// mode for dot streams and words, and a raw keyboard mode for real chords.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bastiangx/brailleserve/internal/logger"
	"github.com/bastiangx/brailleserve/internal/utils"
	"github.com/bastiangx/brailleserve/pkg/braille"
	"github.com/bastiangx/brailleserve/pkg/dictionary"
	"github.com/bastiangx/brailleserve/pkg/engine"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	wordStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// InputHandler reads lines and prints what the engine makes of them. A line
// of dot digits is decoded as a stream of cells; ":word", ":switch",
// ":load", ":info", ":dots" and ":clear" are commands; anything else is looked up as
// a word.
type InputHandler struct {
	session        *engine.Session
	showCandidates bool
	out            *log.Logger
	requestCount   int
}

// NewInputHandler creates a line mode handler printing to stderr.
func NewInputHandler(session *engine.Session, showCandidates bool) *InputHandler {
	return NewInputHandlerWithWriter(session, showCandidates, os.Stderr)
}

// NewInputHandlerWithWriter is NewInputHandler with a custom destination.
func NewInputHandlerWithWriter(session *engine.Session, showCandidates bool, w io.Writer) *InputHandler {
	return &InputHandler{
		session:        session,
		showCandidates: showCandidates,
		out:            logger.NewWithWriter(w, ""),
	}
}

// Start begins the interface loop on stdin.
func (h *InputHandler) Start() error {
	return h.Run(os.Stdin)
}

// Run reads lines from r until it ends. End of input is not an error.
func (h *InputHandler) Run(r io.Reader) error {
	h.out.Print("brailleserve CLI")
	h.out.Print("type dots like '125 15 123 123 135' or a word, :help for commands (Ctrl+C to exit):")

	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			h.handleInput(line)
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

func (h *InputHandler) handleInput(line string) {
	h.requestCount++
	log.Debug("Processing line", "n", h.requestCount, "line", line)

	if strings.HasPrefix(line, ":") {
		h.handleCommand(line)
		return
	}
	if utils.IsDotStream(line) {
		h.handleStream(line)
		return
	}
	h.handleWord(line)
}

func (h *InputHandler) handleCommand(line string) {
	cmd, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	arg = strings.TrimSpace(arg)

	registry := h.session.Registry()
	switch cmd {
	case "word", "w":
		h.handleWord(arg)
	case "switch":
		kind, err := dictionary.ParseKind(arg)
		if err == nil {
			_, err = registry.Switch(kind)
		}
		if err != nil {
			h.out.Print(errorStyle.Render(err.Error()))
			return
		}
		h.printInfo()
	case "load":
		f, err := os.Open(arg)
		if err != nil {
			h.out.Print(errorStyle.Render(err.Error()))
			return
		}
		defer f.Close()
		if _, err := registry.Upload(arg, f); err != nil {
			h.out.Print(errorStyle.Render(err.Error()))
			return
		}
		h.printInfo()
	case "info":
		h.printInfo()
	case "dots":
		h.printDots(arg)
	case "clear":
		h.session.Clear()
		h.out.Print("cleared")
	case "help":
		h.out.Print(":word <text>  suggestions for a word")
		h.out.Print(":switch default|custom  change dictionary")
		h.out.Print(":load <file>  load a custom word list")
		h.out.Print(":info  dictionary status")
		h.out.Print(":dots <text>  cells that type each letter")
	default:
		h.out.Print(errorStyle.Render(fmt.Sprintf("unknown command :%s", cmd)))
	}
}

func (h *InputHandler) handleStream(line string) {
	decoded := h.session.Decode(line)

	cells := make([]string, 0, len(decoded.Cells))
	patterns := make([]braille.Pattern, 0, len(decoded.Cells))
	for _, c := range decoded.Cells {
		cells = append(cells, string(c.Pattern.Cell()))
		patterns = append(patterns, c.Pattern)
	}
	h.out.Printf("cells: %s", strings.Join(cells, ""))
	h.out.Printf("text:  %s", wordStyle.Render(decoded.Text))

	if decoded.Rejected > 0 {
		h.out.Printf("best guess: %s (%d cells had no close letter)", h.session.BestGuess(patterns), decoded.Rejected)
	}
	if h.showCandidates {
		for _, c := range decoded.Cells {
			if c.Exact {
				continue
			}
			var alts []string
			for _, cand := range c.Candidates {
				alts = append(alts, fmt.Sprintf("%s(%d)", cand.Char, cand.Distance))
			}
			h.out.Print(dimStyle.Render(fmt.Sprintf("  %s -> %s", c.Pattern.String(), strings.Join(alts, " "))))
		}
	}
	h.handleWord(utils.LastWord(decoded.Text))
}

func (h *InputHandler) handleWord(word string) {
	if word == "" {
		return
	}
	start := time.Now()
	suggestions := h.session.SuggestWord(word)
	log.Debugf("Took [ %v ] for word '%s'", time.Since(start), word)

	if len(suggestions) == 0 {
		h.out.Printf("No suggestions found for '%s'", word)
		return
	}
	h.out.Printf("Found %d suggestions for '%s':", len(suggestions), word)
	for i, s := range suggestions {
		h.out.Printf("%2d. %-20s (distance: %d)", i+1, wordStyle.Render(s.Word), s.Distance)
	}
}

func (h *InputHandler) printInfo() {
	info := h.session.Registry().Info()
	h.out.Printf("active: %s (%s, %d words)", info.Active, info.Name, info.Words)
	if info.HasCustom {
		h.out.Printf("custom: %s (%d words)", info.CustomName, info.CustomWords)
	}
}

func (h *InputHandler) printDots(text string) {
	for _, r := range strings.ToLower(text) {
		char := string(r)
		if p, ok := h.session.PatternFor(char); ok {
			h.out.Printf("  %s  %s  %s", char, string(p.Cell()), p.String())
		} else {
			h.out.Print(dimStyle.Render(fmt.Sprintf("  %s  no cell", char)))
		}
	}
}
