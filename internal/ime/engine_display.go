package ime

import (
	"fmt"
	"strings"

	"github.com/vrclipboard-ime/karukan/internal/romaji"
)

// buildInputDisplay concatenates the composed text before the cursor, the
// pending romaji buffer, and the composed text after the cursor —
// converting the composed portions to katakana when in Katakana mode (the
// buffer itself is always shown as raw romaji).
func (e *Engine) buildInputDisplay() string {
	runes := []rune(e.inputBuf.Text)
	pos := e.inputBuf.CursorPos
	if pos > len(runes) {
		pos = len(runes)
	}
	before := string(runes[:pos])
	after := string(runes[pos:])
	if e.mode == ModeKatakana {
		before = romaji.HiraganaToKatakana(before)
		after = romaji.HiraganaToKatakana(after)
	}
	return before + e.romajiConv.Buffer() + after
}

// displayCaretPosition returns the caret's rune offset within
// buildInputDisplay's output.
func (e *Engine) displayCaretPosition() int {
	return e.inputBuf.CursorPos + runeLen(e.romajiConv.Buffer())
}

// buildComposingPreedit builds the Composing-phase preedit: the live
// conversion preview (caret pinned to the end) when one is active,
// otherwise the cursor-aware raw input display. Either way the whole
// string is underlined.
func (e *Engine) buildComposingPreedit() Preedit {
	if e.liveText != "" {
		text := e.liveText + e.romajiConv.Buffer()
		return PreeditWithTextUnderlined(text)
	}
	text := e.buildInputDisplay()
	p := PreeditWithTextUnderlined(text)
	p.SetCaret(e.displayCaretPosition())
	return p
}

// displayContext formats the truncated surrounding context for aux text,
// or "" if DisplayContextLen is 0 or no context is set.
func (e *Engine) displayContext() string {
	if e.config.DisplayContextLen == 0 || e.surroundingCtx.isZero() {
		return ""
	}
	var parts []string
	if left := truncateKeepEnd(e.surroundingCtx.Left, e.config.DisplayContextLen); left != "" {
		parts = append(parts, "lctx:"+left)
	}
	if right := truncateKeepStart(e.surroundingCtx.Right, e.config.DisplayContextLen); right != "" {
		parts = append(parts, "rctx:"+right)
	}
	return strings.Join(parts, " ")
}

// modeIndicator returns the bracketed mode label, prefixed with a lightning
// bolt when live conversion is enabled.
func (e *Engine) modeIndicator() string {
	var label string
	switch e.mode {
	case ModeAlphabet:
		label = "[A]"
	case ModeKatakana:
		label = "[カ]"
	default:
		label = "[あ]"
	}
	if e.liveEnabled {
		return "⚡" + label
	}
	return label
}

// formatAuxComposing builds the Composing-phase aux text: mode indicator,
// current reading (including any unflushed romaji), engine name and
// model, and optional context suffix.
func (e *Engine) formatAuxComposing() string {
	reading := e.inputBuf.Text + e.romajiConv.Buffer()
	s := fmt.Sprintf("%s %s | Karukan (%s)", e.modeIndicator(), reading, e.ModelName())
	if ctx := e.displayContext(); ctx != "" {
		s += " | " + ctx
	}
	return s
}

// formatAuxSuggest builds the lightweight aux text shown while auto-suggest
// is live (no token count, to avoid per-keystroke overhead).
func (e *Engine) formatAuxSuggest(reading string) string {
	display := reading + e.romajiConv.Buffer()
	return fmt.Sprintf("%s %s | %dms/%dms", e.modeIndicator(), display, e.metrics.ConversionMs, e.metrics.ProcessKeyMs)
}

// formatAuxConversionWithPage builds the Conversion-phase aux text:
// "[変換](page) reading (ctx) timing (source)".
func (e *Engine) formatAuxConversionWithPage(reading string, candidates *CandidateList) string {
	var page string
	if candidates != nil && candidates.TotalPages() > 1 {
		page = fmt.Sprintf(" (%d/%d)", candidates.CurrentPage()+1, candidates.TotalPages())
	}
	s := fmt.Sprintf("[変換]%s %s", page, reading)
	if ctx := e.displayContext(); ctx != "" {
		s += " | " + ctx
	}
	s += fmt.Sprintf(" | %dms/%dms", e.metrics.ConversionMs, e.metrics.ProcessKeyMs)
	if candidates != nil {
		if sel := candidates.Selected(); sel != nil && sel.Annotation != "" {
			s += " | " + sel.Annotation
		}
	}
	return s
}

// truncateContextForAPI truncates context to MaxAPIContextLen, keeping the
// tail — the form used when building the LM backend's left-context.
func (e *Engine) truncateContextForAPI() string {
	return truncateKeepEnd(e.surroundingCtx.Left, e.config.MaxAPIContextLen)
}

func truncateKeepEnd(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[len(runes)-maxLen:])
}

func truncateKeepStart(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}

func lastIndexByte(s string, b byte) int {
	return strings.LastIndexByte(s, b)
}

func indexByte(s string, b byte) int {
	return strings.IndexByte(s, b)
}
