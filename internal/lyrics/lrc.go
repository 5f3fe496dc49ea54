package lyrics

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// lrcTimestampRe matches one leading LRC timestamp tag: [mm:ss], [mm:ss.cc]
// or [mm:ss.mmm]. A line may carry several tags (repeated chorus lines).
var lrcTimestampRe = regexp.MustCompile(`^\[(\d{1,3}):(\d{2})(?:[.:](\d{1,3}))?\]`)

// lrcMetaRe matches metadata tags like [ar:Artist] or [offset:500], which are
// not lyric lines.
var lrcMetaRe = regexp.MustCompile(`^\[[a-zA-Z#][^\]]*\]$`)

// tailDuration is the assumed duration of the final line, since LRC carries
// start times only.
const tailDuration = 5.0

// ParseLRC parses LRC text into raw lines. End times are derived from the
// following timed line's start; the last line gets tailDuration. Lines
// without a timestamp are kept with Untimed markers. Provider order is
// preserved for lines sharing a start time.
func ParseLRC(content string) []RawLine {
	var lines []RawLine

	for _, raw := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if lrcMetaRe.MatchString(raw) {
			continue
		}

		var starts []float64
		rest := raw
		for {
			m := lrcTimestampRe.FindStringSubmatch(rest)
			if m == nil {
				break
			}
			starts = append(starts, lrcTimestamp(m))
			rest = rest[len(m[0]):]
		}

		text := strings.TrimSpace(rest)
		if len(starts) == 0 {
			lines = append(lines, RawLine{Start: Untimed, End: Untimed, Text: text})
			continue
		}
		for _, t := range starts {
			lines = append(lines, RawLine{Start: t, End: Untimed, Text: text})
		}
	}

	fillEndTimes(lines)
	return lines
}

// fillEndTimes derives each timed line's end from the next timed start.
// Raw provider data may still overlap after this (repeated tags out of
// order); the document builder normalizes that.
func fillEndTimes(lines []RawLine) {
	for i := range lines {
		if !lines[i].Timed() {
			continue
		}
		next := nextTimedStart(lines, i)
		if next >= 0 && next > lines[i].Start {
			lines[i].End = next
		} else {
			lines[i].End = lines[i].Start + tailDuration
		}
	}
}

func nextTimedStart(lines []RawLine, i int) float64 {
	best := -1.0
	for j := range lines {
		if j == i || !lines[j].Timed() || lines[j].Start <= lines[i].Start {
			continue
		}
		if best < 0 || lines[j].Start < best {
			best = lines[j].Start
		}
	}
	return best
}

func lrcTimestamp(m []string) float64 {
	min, _ := strconv.Atoi(m[1])
	sec, _ := strconv.Atoi(m[2])
	frac := 0.0
	if m[3] != "" {
		n, _ := strconv.Atoi(m[3])
		switch len(m[3]) {
		case 1:
			frac = float64(n) / 10.0
		case 2:
			frac = float64(n) / 100.0
		default:
			frac = float64(n) / 1000.0
		}
	}
	return float64(min*60+sec) + frac
}

// FormatLRC renders raw lines back to LRC text. Untimed lines are emitted
// without a tag.
func FormatLRC(lines []RawLine) string {
	var sb strings.Builder
	for _, l := range lines {
		if l.Timed() {
			sb.WriteString(formatTimestamp(l.Start))
			sb.WriteString(" ")
		}
		sb.WriteString(l.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatTimestamp(seconds float64) string {
	totalCs := int(seconds*100 + 0.5)
	min := totalCs / 6000
	totalCs %= 6000
	sec := totalCs / 100
	cs := totalCs % 100
	return fmt.Sprintf("[%02d:%02d.%02d]", min, sec, cs)
}
