// Package dictionary loads word lists and keeps the active list and its trie
// swappable at runtime.
package dictionary

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/bastiangx/brailleserve/pkg/suggest"
	"github.com/charmbracelet/log"
)

//go:embed data/words.txt
var defaultWords []byte

// maxLineBytes bounds a single line so a binary upload cannot grow the
// scanner buffer without limit.
const maxLineBytes = 64 * 1024

// ParseWords reads a newline separated word list. Lines are trimmed and
// lowercased, empty lines are dropped and order is kept. Lines that are not
// valid UTF-8 or hold control characters are skipped, so non-text content
// yields no words rather than an error.
func ParseWords(r io.Reader) []string {
	return parseWords(r, 0)
}

// parseWords is ParseWords with an upper bound on the word count; limit < 1
// means unbounded.
func parseWords(r io.Reader, limit int) []string {
	words := []string{}
	if r == nil {
		return words
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)

	skipped := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !utf8.ValidString(line) || strings.ContainsFunc(line, isControl) {
			skipped++
			continue
		}
		words = append(words, suggest.Lower(line))
		if limit > 0 && len(words) >= limit {
			log.Warnf("Word list truncated at %d words", limit)
			break
		}
	}
	if err := scanner.Err(); err != nil {
		log.Warnf("Stopped reading word list early: %v", err)
	}
	if skipped > 0 {
		log.Debugf("Skipped %d non-text lines", skipped)
	}
	return words
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f
}

// LoadWords reads a word list from path. A missing or unreadable file is an
// error.
func LoadWords(path string) ([]string, error) {
	format, err := DetectFileFormat(path)
	if err != nil {
		return nil, err
	}
	if format != FormatText {
		return nil, fmt.Errorf("%s is a %s, not a word list", path, formatName(format))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open word list %s: %w", path, err)
	}
	defer f.Close()

	words := ParseWords(f)
	log.Debugf("Loaded %d words from %s", len(words), path)
	return words, nil
}

// DefaultWords returns a fresh copy of the bundled word list.
func DefaultWords() []string {
	return ParseWords(bytes.NewReader(defaultWords))
}
