package ime

import "strings"

// AttributeType is the visual styling applied to a span of preedit text.
type AttributeType int

const (
	AttrUnderline AttributeType = iota
	AttrUnderlineDouble
	AttrHighlight
	AttrReverse
)

// PreeditAttribute styles the half-open character range [Start, End) of a
// Preedit's text.
type PreeditAttribute struct {
	Start int
	End   int
	Type  AttributeType
}

// NewPreeditAttribute returns a PreeditAttribute spanning [start, end).
func NewPreeditAttribute(start, end int, t AttributeType) PreeditAttribute {
	return PreeditAttribute{Start: start, End: end, Type: t}
}

// PreeditSegment is one labeled run of text used to build a Preedit via
// PreeditFromSegments; segments are concatenated in order and each
// contributes one attribute spanning its own run.
type PreeditSegment struct {
	Text string
	Type AttributeType
}

// HighlightedSegment returns a segment styled as the selected conversion
// candidate.
func HighlightedSegment(text string) PreeditSegment {
	return PreeditSegment{Text: text, Type: AttrHighlight}
}

// Preedit is the uncommitted text shown inline at the cursor, with a caret
// position (in runes) and zero or more styled sub-ranges.
type Preedit struct {
	Text       string
	Caret      int
	Attributes []PreeditAttribute
}

// NewPreedit returns an empty preedit.
func NewPreedit() Preedit {
	return Preedit{}
}

// PreeditWithText returns a preedit showing text with no styling and the
// caret at the end.
func PreeditWithText(text string) Preedit {
	return Preedit{Text: text, Caret: runeLen(text)}
}

// PreeditWithTextUnderlined returns a preedit showing text, underlined
// end-to-end, caret at the end — the typical Composing-state display.
func PreeditWithTextUnderlined(text string) Preedit {
	return Preedit{
		Text:       text,
		Caret:      runeLen(text),
		Attributes: []PreeditAttribute{NewPreeditAttribute(0, runeLen(text), AttrUnderline)},
	}
}

// PreeditFromSegments concatenates segments into one preedit, giving each
// segment its own attribute spanning the run it occupies.
func PreeditFromSegments(segments []PreeditSegment, caret int) Preedit {
	var text strings.Builder
	attrs := make([]PreeditAttribute, 0, len(segments))
	offset := 0
	for _, seg := range segments {
		text.WriteString(seg.Text)
		n := runeLen(seg.Text)
		attrs = append(attrs, NewPreeditAttribute(offset, offset+n, seg.Type))
		offset += n
	}
	return Preedit{Text: text.String(), Caret: caret, Attributes: attrs}
}

// IsEmpty reports whether the preedit has no text.
func (p Preedit) IsEmpty() bool {
	return p.Text == ""
}

// Len returns the preedit text's length in runes.
func (p Preedit) Len() int {
	return runeLen(p.Text)
}

// SetCaret clamps pos to [0, Len()] and sets it as the caret position.
func (p *Preedit) SetCaret(pos int) {
	n := p.Len()
	if pos < 0 {
		pos = 0
	} else if pos > n {
		pos = n
	}
	p.Caret = pos
}

// SetAttributes replaces the preedit's styled ranges.
func (p *Preedit) SetAttributes(attrs []PreeditAttribute) {
	p.Attributes = attrs
}

// Clear resets the preedit to empty.
func (p *Preedit) Clear() {
	*p = Preedit{}
}

func runeLen(s string) int {
	return len([]rune(s))
}
