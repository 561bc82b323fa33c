/*
Package braille decodes six-dot braille cells typed as key chords.

A cell is a Pattern: the set of raised dots 1 through 6. Chords arrive as an
unordered set of held keys and are normalized into a Pattern by a KeyMap. The
Pattern is then looked up in a Table, and when the lookup misses, a Resolver
ranks every table entry by edit distance so the caller can decide whether the
closest letter is good enough to insert.

Streams of dot digits without explicit chord boundaries (the CLI path) are
split into cells by Segment before they reach the Resolver.
*/
package braille

import (
	"errors"
	"fmt"
	"strings"
)

// MaxDot is the highest dot number of a six-dot cell.
const MaxDot = 6

// ErrInvalidPattern is returned when a pattern string contains anything other
// than dot digits 1-6 and commas.
var ErrInvalidPattern = errors.New("invalid dot pattern")

// Pattern is a braille cell. Bit i-1 is set when dot i is raised.
type Pattern uint8

// PatternOf builds a Pattern from dot numbers. Numbers outside 1-6 are
// ignored and duplicates collapse.
func PatternOf(dots ...int) Pattern {
	var p Pattern
	for _, d := range dots {
		if d < 1 || d > MaxDot {
			continue
		}
		p |= 1 << (d - 1)
	}
	return p
}

// ParsePattern accepts the digit form "124" as well as the comma form "1,2,4".
// Dot order in the input does not matter.
func ParsePattern(s string) (Pattern, error) {
	var p Pattern
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r == ',' || r == ' ':
			continue
		case r >= '1' && r <= '0'+MaxDot:
			p |= 1 << (r - '1')
		default:
			return 0, fmt.Errorf("%w: %q", ErrInvalidPattern, s)
		}
	}
	return p, nil
}

// Has reports whether dot d is raised.
func (p Pattern) Has(d int) bool {
	if d < 1 || d > MaxDot {
		return false
	}
	return p&(1<<(d-1)) != 0
}

// IsEmpty reports whether no dot is raised.
func (p Pattern) IsEmpty() bool {
	return p&0x3f == 0
}

// Dots returns the raised dots in ascending order.
func (p Pattern) Dots() []int {
	dots := make([]int, 0, MaxDot)
	for d := 1; d <= MaxDot; d++ {
		if p.Has(d) {
			dots = append(dots, d)
		}
	}
	return dots
}

// Digits renders the pattern as ascending concatenated digits, e.g. "124".
func (p Pattern) Digits() string {
	var b strings.Builder
	for _, d := range p.Dots() {
		b.WriteByte(byte('0' + d))
	}
	return b.String()
}

// String renders the canonical comma form, e.g. "1,2,4". Edit distances
// between cells are measured on this form.
func (p Pattern) String() string {
	var b strings.Builder
	for i, d := range p.Dots() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte(byte('0' + d))
	}
	return b.String()
}

// Cell renders the pattern as the Unicode braille character (U+2800 block).
func (p Pattern) Cell() rune {
	return rune(0x2800 + int(p&0x3f))
}
