package braille

import (
	"fmt"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// DefaultLayout is the home-row layout: a s d for dots 1 2 3 and j k l for
// dots 4 5 6.
const DefaultLayout = "asdjkl"

// KeyMap translates raw key identifiers into dot numbers.
type KeyMap struct {
	dots map[string]int
}

// NewKeyMap builds a KeyMap from a six-key layout string, where the n-th key
// produces dot n. The digit keys "1".."6" always map to their own dot.
func NewKeyMap(layout string) (*KeyMap, error) {
	keys := []rune(strings.ToLower(layout))
	if len(keys) != MaxDot {
		return nil, fmt.Errorf("layout %q must have exactly %d keys", layout, MaxDot)
	}

	km := &KeyMap{dots: make(map[string]int, 2*MaxDot)}
	for d := 1; d <= MaxDot; d++ {
		km.dots[strconv.Itoa(d)] = d
	}
	seen := mapset.NewThreadUnsafeSet[rune]()
	for i, k := range keys {
		if !seen.Add(k) {
			return nil, fmt.Errorf("layout %q repeats key %q", layout, k)
		}
		if k >= '1' && k <= '9' {
			return nil, fmt.Errorf("layout %q uses digit key %q", layout, k)
		}
		km.dots[string(k)] = i + 1
	}
	return km, nil
}

// DefaultKeyMap returns the KeyMap for DefaultLayout.
func DefaultKeyMap() *KeyMap {
	km, _ := NewKeyMap(DefaultLayout)
	return km
}

// Dot returns the dot a key produces.
func (km *KeyMap) Dot(key string) (int, bool) {
	d, ok := km.dots[strings.ToLower(key)]
	return d, ok
}

// Normalize turns the keys held together in one chord into a Pattern.
// Unmapped keys are ignored. The result depends only on the set of keys, not
// on their order or repetition.
func (km *KeyMap) Normalize(keys []string) Pattern {
	held := mapset.NewThreadUnsafeSet[int]()
	for _, k := range keys {
		if d, ok := km.Dot(k); ok {
			held.Add(d)
		}
	}
	return NormalizeDots(held.ToSlice())
}

// NormalizeDots turns a set of dot numbers into a Pattern.
func NormalizeDots(dots []int) Pattern {
	return PatternOf(dots...)
}
