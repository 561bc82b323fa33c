package braille

import "strings"

// CleanStream keeps only the dot digits 1-6 of a raw stream.
func CleanStream(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '1' && r <= '0'+MaxDot {
			return r
		}
		return -1
	}, s)
}

// Segment splits a run of dot digits into cells. A cell is a maximal
// strictly increasing run, so "1312" splits into "13" and "12".
func Segment(stream string) []string {
	segments := []string{}
	if stream == "" {
		return segments
	}

	start := 0
	for i := 1; i < len(stream); i++ {
		if stream[i] <= stream[i-1] {
			segments = append(segments, stream[start:i])
			start = i
		}
	}
	return append(segments, stream[start:])
}

// Decoded is the result of decoding a dot stream.
type Decoded struct {
	Text  string
	Cells []Resolution
	// Rejected counts cells whose best match exceeded the accept distance.
	Rejected int
}

// DecodeStream cleans and segments a raw stream and resolves each cell.
// Cells whose best candidate is farther than maxDistance add nothing to Text.
func DecodeStream(raw string, r *Resolver, maxDistance int) Decoded {
	var (
		out Decoded
		b   strings.Builder
	)
	for _, seg := range Segment(CleanStream(raw)) {
		p, err := ParsePattern(seg)
		if err != nil {
			continue
		}
		res := r.Resolve(p)
		out.Cells = append(out.Cells, res)
		if char, ok := res.Accept(maxDistance); ok {
			b.WriteString(char)
		} else {
			out.Rejected++
		}
	}
	out.Text = b.String()
	return out
}
