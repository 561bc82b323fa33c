package suggest

import (
	"sort"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Trie is the prefix index over one dictionary. Each word's item is the
// position it was first inserted at, which fixes the order prefix queries
// return words in.
type Trie struct {
	trie  *patricia.Trie
	count int
}

// NewTrie returns an empty trie.
func NewTrie() *Trie {
	return &Trie{trie: patricia.NewTrie()}
}

// BuildTrie indexes words in order. Empty words and repeats are skipped.
func BuildTrie(words []string) *Trie {
	t := NewTrie()
	for _, w := range words {
		t.Insert(w)
	}
	return t
}

// Insert adds word. Inserting a word twice keeps its first position.
func (t *Trie) Insert(word string) {
	if word == "" {
		return
	}
	if t.trie.Insert(patricia.Prefix(word), t.count) {
		t.count++
	}
}

// Contains reports whether word itself was inserted.
func (t *Trie) Contains(word string) bool {
	if word == "" {
		return false
	}
	return t.trie.Get(patricia.Prefix(word)) != nil
}

// HasPrefix reports whether any inserted word starts with prefix.
func (t *Trie) HasPrefix(prefix string) bool {
	if t.count == 0 {
		return false
	}
	if prefix == "" {
		return true
	}
	return t.trie.MatchSubtree(patricia.Prefix(prefix))
}

// WordsWithPrefix returns every inserted word starting with prefix, prefix
// included when it is a word, in insertion order.
func (t *Trie) WordsWithPrefix(prefix string) []string {
	type hit struct {
		word string
		pos  int
	}
	var hits []hit

	err := t.trie.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, item patricia.Item) error {
		pos, ok := item.(int)
		if !ok {
			log.Errorf("Unknown item type: %T for word %s", item, p)
			return nil
		}
		hits = append(hits, hit{word: string(p), pos: pos})
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting trie subtree: %v", err)
		return nil
	}

	sort.Slice(hits, func(i, j int) bool {
		return hits[i].pos < hits[j].pos
	})
	words := make([]string, len(hits))
	for i, h := range hits {
		words[i] = h.word
	}
	return words
}

// Len returns the number of distinct words.
func (t *Trie) Len() int {
	return t.count
}
