package document

import "sort"

// NoLine is returned as the index when no line is active (silence before,
// between or after lines).
const NoLine = -1

// ActiveLine resolves the line containing playback time t, using a
// monotonic last-known-index hint from the caller. The hint short-circuits
// the usual forward advance (same line, or the immediate next one) to O(1);
// seeks and backward jumps miss the hint and fall back to binary search
// over the sorted start times. Pass NoLine when no hint is held.
//
// A line is active for t in [Start, End). Returns NoLine when t falls
// before the first line, after the last, or in a gap.
func ActiveLine(doc *TimedDocument, t float64, hint int) int {
	lines := doc.Lines
	if len(lines) == 0 {
		return NoLine
	}

	if hint >= 0 && hint < len(lines) {
		if contains(lines[hint], t) {
			return hint
		}
		// Normal forward playback: the next line, or the gap before it.
		if t >= lines[hint].End {
			if hint+1 == len(lines) {
				return NoLine
			}
			if contains(lines[hint+1], t) {
				return hint + 1
			}
			if t < lines[hint+1].Start {
				return NoLine
			}
		}
	}

	// Binary search: last line with Start <= t.
	i := sort.Search(len(lines), func(i int) bool { return lines[i].Start > t }) - 1
	if i < 0 {
		return NoLine
	}
	if contains(lines[i], t) {
		return i
	}
	return NoLine
}

func contains(l Line, t float64) bool {
	return t >= l.Start && t < l.End
}

// TokenAt resolves the token under a cursor position, given as a rune
// offset into the line text. Tokens carry no timestamps of their own (the
// source material is timed per line), so token activation is driven by the
// pointer, never interpolated from line timing.
func TokenAt(line *Line, runeOffset int) (Token, bool) {
	if line == nil {
		return Token{}, false
	}
	tokens := line.Tokens
	// Tokens are disjoint and ordered; find the first one ending past the
	// offset and check containment.
	i := sort.Search(len(tokens), func(i int) bool { return tokens[i].Span.End > runeOffset })
	if i < len(tokens) && tokens[i].Span.Start <= runeOffset {
		return tokens[i], true
	}
	return Token{}, false
}

// Synchronizer is a cheap per-session view over an immutable document that
// remembers the last resolved index. Not safe for concurrent use; create
// one per session.
type Synchronizer struct {
	doc  *TimedDocument
	last int
}

func NewSynchronizer(doc *TimedDocument) *Synchronizer {
	return &Synchronizer{doc: doc, last: NoLine}
}

// ActiveLineAt resolves the active line for t and updates the internal
// hint. The second return is false during silence.
func (s *Synchronizer) ActiveLineAt(t float64) (*Line, bool) {
	idx := ActiveLine(s.doc, t, s.last)
	if idx != NoLine {
		s.last = idx
		return &s.doc.Lines[idx], true
	}
	return nil, false
}

// ActiveIndex returns the line index last resolved by ActiveLineAt.
func (s *Synchronizer) ActiveIndex() int {
	return s.last
}
