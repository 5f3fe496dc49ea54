package document

// Song identifies a track registered for annotation. SourceLang is the
// lyrics language as supplied by the user; "auto" lets the translation
// engine infer it (POS tagging and script-aware tokenization then degrade
// to defaults).
type Song struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	SourceLang string `json:"source_lang,omitempty"`
	TargetLang string `json:"target_lang"`
}

// Span is a half-open rune offset range [Start, End) within a line's text
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Token is a word or punctuation unit within a line. POS and Translation
// are empty until annotation succeeds for the whole line.
type Token struct {
	Span        Span   `json:"span"`
	Surface     string `json:"surface"`
	POS         string `json:"pos,omitempty"`
	Translation string `json:"translation,omitempty"`
}

// AlignGroup links source token indices to word indices in the line-level
// translation. A group with an empty side is an unlinked singleton.
type AlignGroup struct {
	Src []int `json:"src"`
	Dst []int `json:"dst"`
}

// Line is a single lyric line with timing, tokens and translations.
// Annotated is false when per-token annotation failed and only the
// line-level Translated fallback is available.
type Line struct {
	Start      float64      `json:"start"` // seconds
	End        float64      `json:"end"`   // seconds
	Text       string       `json:"text"`
	Tokens     []Token      `json:"tokens,omitempty"`
	Translated string       `json:"translated,omitempty"`
	Alignment  []AlignGroup `json:"alignment,omitempty"`
	Annotated  bool         `json:"annotated"`
}

// LineAnnotation is the annotation output for one raw line, produced by the
// annotator and merged with timing by the builder.
type LineAnnotation struct {
	Tokens     []Token
	Translated string
	Alignment  []AlignGroup
	Annotated  bool
}

// TimedDocument is the fully assembled, time-ordered annotated representation
// of a song's lyrics. It is immutable once built; a rebuild produces a new
// instance.
type TimedDocument struct {
	Song       Song   `json:"song"`
	TargetLang string `json:"target_lang"`
	Lines      []Line `json:"lines"`
}

// Empty reports whether the document has no usable lines.
func (d *TimedDocument) Empty() bool {
	return len(d.Lines) == 0
}
