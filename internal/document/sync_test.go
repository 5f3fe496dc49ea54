package document

import (
	"testing"

	"github.com/lyri-learn/backend/internal/lyrics"
)

func twoLineDoc(t *testing.T) *TimedDocument {
	t.Helper()
	raw := []lyrics.RawLine{
		{Start: 0, End: 2, Text: "Hola mundo"},
		{Start: 2, End: 4.5, Text: "Buenos dias"},
	}
	doc := Build(raw, nil, testSong(), "en")
	if len(doc.Lines) != 2 {
		t.Fatalf("fixture: expected 2 lines, got %d", len(doc.Lines))
	}
	return doc
}

func TestActiveLine(t *testing.T) {
	doc := twoLineDoc(t)

	tests := []struct {
		t    float64
		want int
	}{
		{-1.0, NoLine}, // before the first line
		{0.0, 0},       // inclusive start
		{1.0, 0},
		{2.0, 1}, // boundary instant belongs to the later line
		{3.0, 1},
		{4.5, NoLine}, // exclusive end
		{5.0, NoLine}, // after the last line
	}
	for _, tt := range tests {
		if got := ActiveLine(doc, tt.t, NoLine); got != tt.want {
			t.Errorf("ActiveLine(t=%.1f) = %d, want %d", tt.t, got, tt.want)
		}
	}
}

func TestActiveLineGap(t *testing.T) {
	raw := []lyrics.RawLine{
		{Start: 0, End: 2, Text: "a"},
		{Start: 5, End: 7, Text: "b"},
	}
	doc := Build(raw, nil, testSong(), "en")

	if got := ActiveLine(doc, 3.0, NoLine); got != NoLine {
		t.Errorf("gap should yield NoLine, got %d", got)
	}
	// Hint path through the same gap.
	if got := ActiveLine(doc, 3.0, 0); got != NoLine {
		t.Errorf("gap with hint should yield NoLine, got %d", got)
	}
}

func TestActiveLineHint(t *testing.T) {
	doc := twoLineDoc(t)

	// Same line.
	if got := ActiveLine(doc, 1.5, 0); got != 0 {
		t.Errorf("same-line hint = %d", got)
	}
	// Forward advance to the next line.
	if got := ActiveLine(doc, 2.5, 0); got != 1 {
		t.Errorf("next-line hint = %d", got)
	}
	// Past the last line.
	if got := ActiveLine(doc, 9.0, 1); got != NoLine {
		t.Errorf("hint past end = %d", got)
	}
	// Stale hint from a backward seek still resolves correctly.
	if got := ActiveLine(doc, 0.5, 1); got != 0 {
		t.Errorf("backward seek with stale hint = %d", got)
	}
	// Out-of-range hints are ignored.
	if got := ActiveLine(doc, 1.0, 99); got != 0 {
		t.Errorf("oversized hint = %d", got)
	}
	if got := ActiveLine(doc, 1.0, -5); got != 0 {
		t.Errorf("negative hint = %d", got)
	}
}

func TestActiveLineHintMatchesSearch(t *testing.T) {
	doc := twoLineDoc(t)
	// Every (t, hint) combination must agree with the hintless answer.
	for _, tt := range []float64{-1, 0, 0.5, 1.9, 2, 3, 4.4, 4.5, 6} {
		want := ActiveLine(doc, tt, NoLine)
		for hint := -1; hint < len(doc.Lines); hint++ {
			if got := ActiveLine(doc, tt, hint); got != want {
				t.Errorf("t=%.2f hint=%d: got %d, want %d", tt, hint, got, want)
			}
		}
	}
}

func TestActiveLineEmptyDoc(t *testing.T) {
	doc := Build(nil, nil, testSong(), "en")
	if got := ActiveLine(doc, 1.0, NoLine); got != NoLine {
		t.Errorf("empty document should always be silent, got %d", got)
	}
}

func TestTokenAt(t *testing.T) {
	line := &Line{
		Text: "Hola mundo",
		Tokens: []Token{
			{Span: Span{Start: 0, End: 4}, Surface: "Hola"},
			{Span: Span{Start: 5, End: 10}, Surface: "mundo"},
		},
	}

	if tok, ok := TokenAt(line, 0); !ok || tok.Surface != "Hola" {
		t.Errorf("offset 0: %+v ok=%v", tok, ok)
	}
	if tok, ok := TokenAt(line, 3); !ok || tok.Surface != "Hola" {
		t.Errorf("offset 3: %+v ok=%v", tok, ok)
	}
	// The space between tokens belongs to neither.
	if _, ok := TokenAt(line, 4); ok {
		t.Error("offset 4 should hit no token")
	}
	if tok, ok := TokenAt(line, 7); !ok || tok.Surface != "mundo" {
		t.Errorf("offset 7: %+v ok=%v", tok, ok)
	}
	if _, ok := TokenAt(line, 10); ok {
		t.Error("offset past the line should hit no token")
	}
	if _, ok := TokenAt(nil, 0); ok {
		t.Error("nil line should hit no token")
	}
}

func TestSynchronizer(t *testing.T) {
	doc := twoLineDoc(t)
	s := NewSynchronizer(doc)

	if s.ActiveIndex() != NoLine {
		t.Errorf("fresh synchronizer index = %d", s.ActiveIndex())
	}

	line, ok := s.ActiveLineAt(1.0)
	if !ok || line.Text != "Hola mundo" {
		t.Fatalf("t=1.0: %+v ok=%v", line, ok)
	}
	if s.ActiveIndex() != 0 {
		t.Errorf("index after t=1.0 = %d", s.ActiveIndex())
	}

	line, ok = s.ActiveLineAt(3.0)
	if !ok || line.Text != "Buenos dias" {
		t.Fatalf("t=3.0: %+v ok=%v", line, ok)
	}

	if _, ok := s.ActiveLineAt(9.0); ok {
		t.Error("silence after the last line reported a line")
	}
	// Silence keeps the previous hint for the next resolve.
	if s.ActiveIndex() != 1 {
		t.Errorf("index after silence = %d", s.ActiveIndex())
	}
}
