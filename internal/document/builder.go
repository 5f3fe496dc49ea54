package document

import (
	"log"
	"sort"

	"github.com/lyri-learn/backend/internal/lyrics"
)

// overlapEpsilon is subtracted from a clamped end time so adjacent lines
// never share an instant.
const overlapEpsilon = 0.001

// Build merges raw timed lines with their annotations into an immutable
// document. annotations must be parallel to rawLines; a nil slice or a nil
// entry means the line carries no annotation (tokens only come from the
// annotator, never invented here).
//
// Normalization: untimed and zero/negative-duration lines are dropped and
// logged as data-quality defects, lines are stable-sorted by start time
// (provider order breaks ties, simultaneous onsets are legitimate), and an
// end time reaching into the next line's start is clamped just below it.
// If nothing survives, the result is an empty document, not an error.
func Build(rawLines []lyrics.RawLine, annotations []LineAnnotation, song Song, targetLang string) *TimedDocument {
	doc := &TimedDocument{
		Song:       song,
		TargetLang: targetLang,
		Lines:      []Line{},
	}

	var lines []Line
	for i, raw := range rawLines {
		if !raw.Timed() {
			log.Printf("[build] dropping untimed line %d: %q", i, raw.Text)
			continue
		}
		if raw.Start >= raw.End {
			log.Printf("[build] dropping zero-duration line %d: start=%.3f end=%.3f %q",
				i, raw.Start, raw.End, raw.Text)
			continue
		}
		line := Line{
			Start: raw.Start,
			End:   raw.End,
			Text:  raw.Text,
		}
		if i < len(annotations) {
			a := annotations[i]
			line.Tokens = a.Tokens
			line.Translated = a.Translated
			line.Alignment = a.Alignment
			line.Annotated = a.Annotated
		}
		lines = append(lines, line)
	}

	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Start < lines[j].Start })

	// Clamp overlaps against the following line.
	for i := 0; i < len(lines)-1; i++ {
		if lines[i].End > lines[i+1].Start {
			clamped := lines[i+1].Start - overlapEpsilon
			log.Printf("[build] clamping overlap: line %.3f-%.3f -> end %.3f", lines[i].Start, lines[i].End, clamped)
			lines[i].End = clamped
		}
	}

	// Clamping can invert a line that started at the same instant as its
	// successor; drop those too.
	for _, l := range lines {
		if l.Start < l.End {
			doc.Lines = append(doc.Lines, l)
		} else {
			log.Printf("[build] dropping line inverted by clamping: start=%.3f %q", l.Start, l.Text)
		}
	}

	if doc.Empty() {
		log.Printf("[build] no usable lines for song=%s lang=%s", song.ID, targetLang)
	}
	return doc
}
