package braille

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

//go:embed data/letters.json
var defaultTableJSON []byte

var (
	// ErrDuplicatePattern is returned when a table source maps the same cell twice.
	ErrDuplicatePattern = errors.New("duplicate dot pattern")
	// ErrEmptyTable is returned when a table source holds no entries.
	ErrEmptyTable = errors.New("dot pattern table is empty")
)

// Entry is one row of a Table.
type Entry struct {
	Pattern Pattern
	Char    string
}

// Table maps cells to output characters. It keeps the order entries were
// loaded in, which fuzzy ranking relies on to break ties. A Table is never
// modified after it is built.
type Table struct {
	entries []Entry
	index   map[Pattern]int
}

// NewTable builds a table from entries in the given order.
func NewTable(entries []Entry) (*Table, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyTable
	}
	t := &Table{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[Pattern]int, len(entries)),
	}
	for _, e := range entries {
		if e.Pattern.IsEmpty() {
			return nil, fmt.Errorf("%w: empty cell for %q", ErrInvalidPattern, e.Char)
		}
		if _, dup := t.index[e.Pattern]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePattern, e.Pattern)
		}
		t.index[e.Pattern] = len(t.entries)
		t.entries = append(t.entries, e)
	}
	return t, nil
}

// DefaultTable returns the bundled a-z table.
func DefaultTable() *Table {
	t, err := ParseTableJSON(defaultTableJSON)
	if err != nil {
		// embedded data is fixed at build time
		panic(fmt.Sprintf("braille: bundled table: %v", err))
	}
	return t
}

// Lookup returns the character for p. A missing pattern is reported through
// ok and is not an error.
func (t *Table) Lookup(p Pattern) (string, bool) {
	i, ok := t.index[p]
	if !ok {
		return "", false
	}
	return t.entries[i].Char, true
}

// PatternFor returns the cell producing char, if any.
func (t *Table) PatternFor(char string) (Pattern, bool) {
	for _, e := range t.entries {
		if e.Char == char {
			return e.Pattern, true
		}
	}
	return 0, false
}

// Entries returns a copy of the rows in load order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.entries)
}

// LoadTable reads a table file. The parser is chosen by extension: .json or
// .yaml/.yml. A missing or corrupt file is returned as an error; there is no
// fallback table.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", path, err)
	}

	var t *Table
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		t, err = ParseTableJSON(data)
	case ".yaml", ".yml":
		t, err = ParseTableYAML(data)
	default:
		return nil, fmt.Errorf("unsupported table format %q for %s", ext, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse table %s: %w", path, err)
	}
	log.Debugf("Loaded dot table from %s: %d entries", path, t.Len())
	return t, nil
}

// ParseTableJSON parses a flat JSON object of pattern -> character. Keys are
// read in document order.
func ParseTableJSON(data []byte) (*Table, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, errors.New("table must be a JSON object")
	}

	var (
		entries []Entry
		perr    error
	)
	root.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.String {
			perr = fmt.Errorf("value for %q is not a string", key.String())
			return false
		}
		p, err := ParsePattern(key.String())
		if err != nil {
			perr = err
			return false
		}
		entries = append(entries, Entry{Pattern: p, Char: value.String()})
		return true
	})
	if perr != nil {
		return nil, perr
	}
	return NewTable(entries)
}

// ParseTableYAML parses a YAML mapping of pattern -> character. The node API
// is used so mapping order survives.
func ParseTableYAML(data []byte) (*Table, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, ErrEmptyTable
	}
	m := doc.Content[0]
	if m.Kind != yaml.MappingNode {
		return nil, errors.New("table must be a YAML mapping")
	}

	entries := make([]Entry, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		k, v := m.Content[i], m.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("value for %q is not a scalar (line %d)", k.Value, v.Line)
		}
		p, err := ParsePattern(k.Value)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Pattern: p, Char: v.Value})
	}
	return NewTable(entries)
}
