package lyrics

// Untimed marks a raw line that carried no timestamp. Such lines survive
// parsing (plain lyrics are still useful for translation) but are excluded
// from the timed document during build normalization.
const Untimed = -1

// RawLine is a single timestamped lyric line as returned by a provider,
// before tokenization and annotation.
type RawLine struct {
	Start float64 `json:"start"` // seconds, Untimed if absent
	End   float64 `json:"end"`   // seconds, Untimed if absent
	Text  string  `json:"text"`
}

// Timed reports whether the line carries usable timing.
func (l RawLine) Timed() bool {
	return l.Start >= 0
}
