package ime

// InputBuffer holds the composed (already romaji-converted) text of the
// word currently being typed, plus the caret position within it as a rune
// index. The unconverted romaji awaiting more input lives separately in
// the romaji converter and is conceptually anchored at CursorPos.
type InputBuffer struct {
	Text      string
	CursorPos int
}

// NewInputBuffer returns an empty buffer.
func NewInputBuffer() InputBuffer {
	return InputBuffer{}
}

// Clear empties the buffer and resets the cursor.
func (b *InputBuffer) Clear() {
	b.Text = ""
	b.CursorPos = 0
}

// Insert splices text into Text at CursorPos (a rune index) and advances
// the cursor past the inserted runes.
func (b *InputBuffer) Insert(text string) {
	if text == "" {
		return
	}
	runes := []rune(b.Text)
	pos := b.CursorPos
	if pos > len(runes) {
		pos = len(runes)
	}
	out := make([]rune, 0, len(runes)+runeLen(text))
	out = append(out, runes[:pos]...)
	out = append(out, []rune(text)...)
	out = append(out, runes[pos:]...)
	b.Text = string(out)
	b.CursorPos = pos + runeLen(text)
}

// RemoveCharAt removes the rune at charPos and returns it, or (0, false) if
// charPos is out of range. The cursor is not moved.
func (b *InputBuffer) RemoveCharAt(charPos int) (rune, bool) {
	runes := []rune(b.Text)
	if charPos < 0 || charPos >= len(runes) {
		return 0, false
	}
	ch := runes[charPos]
	b.Text = string(append(runes[:charPos], runes[charPos+1:]...))
	return ch, true
}

// RemoveCharBeforeCursor decrements the cursor and removes the rune now
// before it (backspace semantics).
func (b *InputBuffer) RemoveCharBeforeCursor() (rune, bool) {
	if b.CursorPos <= 0 {
		return 0, false
	}
	b.CursorPos--
	return b.RemoveCharAt(b.CursorPos)
}

// RemoveCharAtCursor removes the rune at the cursor without moving it
// (delete-key semantics).
func (b *InputBuffer) RemoveCharAtCursor() (rune, bool) {
	return b.RemoveCharAt(b.CursorPos)
}
