package braille

import (
	"sort"

	"github.com/hbollon/go-edlib"
)

// DefaultCandidates is how many ranked characters a fuzzy resolution keeps.
const DefaultCandidates = 3

// Candidate is a character and its edit distance from the typed cell.
type Candidate struct {
	Char     string
	Pattern  Pattern
	Distance int
}

// Resolution is the outcome of resolving one cell.
type Resolution struct {
	Pattern    Pattern
	Exact      bool
	Candidates []Candidate
}

// Best returns the closest candidate.
func (r Resolution) Best() (Candidate, bool) {
	if len(r.Candidates) == 0 {
		return Candidate{}, false
	}
	return r.Candidates[0], true
}

// Accept returns the best character when it lies within maxDistance.
func (r Resolution) Accept(maxDistance int) (string, bool) {
	best, ok := r.Best()
	if !ok || best.Distance > maxDistance {
		return "", false
	}
	return best.Char, true
}

// Resolver maps cells to characters, falling back to distance ranking over
// the whole table when a cell is not in it. It applies no acceptance
// threshold; see Resolution.Accept.
type Resolver struct {
	Table      *Table
	Candidates int
	Distance   func(a, b string) int
}

// NewResolver returns a Resolver over t with Levenshtein ranking.
func NewResolver(t *Table, candidates int) *Resolver {
	if candidates < 1 {
		candidates = DefaultCandidates
	}
	return &Resolver{
		Table:      t,
		Candidates: candidates,
		Distance:   edlib.LevenshteinDistance,
	}
}

// Resolve looks p up in the table. Exact hits return a single candidate at
// distance 0 without ranking. An empty cell resolves to nothing.
func (r *Resolver) Resolve(p Pattern) Resolution {
	res := Resolution{Pattern: p}
	if p.IsEmpty() || r.Table == nil {
		return res
	}

	if char, ok := r.Table.Lookup(p); ok {
		res.Exact = true
		res.Candidates = []Candidate{{Char: char, Pattern: p, Distance: 0}}
		return res
	}

	dist := r.Distance
	if dist == nil {
		dist = edlib.LevenshteinDistance
	}

	typed := p.String()
	ranked := make([]Candidate, 0, r.Table.Len())
	for _, e := range r.Table.entries {
		ranked = append(ranked, Candidate{
			Char:     e.Char,
			Pattern:  e.Pattern,
			Distance: dist(typed, e.Pattern.String()),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Distance < ranked[j].Distance
	})

	n := r.Candidates
	if n < 1 {
		n = DefaultCandidates
	}
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	res.Candidates = ranked
	return res
}

// ResolveString parses s as a pattern and resolves it. Unparseable input
// resolves to nothing.
func (r *Resolver) ResolveString(s string) Resolution {
	p, err := ParsePattern(s)
	if err != nil {
		return Resolution{}
	}
	return r.Resolve(p)
}
