package ime

// moveCaret flushes any pending romaji into the composed buffer (so it
// isn't silently dropped when the cursor leaves its position), clears the
// live-conversion preview, repositions the cursor, and rebuilds the
// Composing preedit.
func (e *Engine) moveCaret(newPos int) EngineResult {
	e.flushRomajiToComposed()
	e.liveText = ""

	n := runeLen(e.inputBuf.Text)
	if newPos < 0 {
		newPos = 0
	} else if newPos > n {
		newPos = n
	}
	e.inputBuf.CursorPos = newPos

	preedit := e.setComposingState()
	return ConsumedResult().
		WithAction(UpdatePreeditAction(preedit)).
		WithAction(HideCandidatesAction()).
		WithAction(UpdateAuxTextAction(e.formatAuxComposing()))
}

func (e *Engine) moveCaretLeft() EngineResult {
	return e.moveCaret(e.inputBuf.CursorPos - 1)
}

func (e *Engine) moveCaretRight() EngineResult {
	return e.moveCaret(e.inputBuf.CursorPos + 1)
}

func (e *Engine) moveCaretHome() EngineResult {
	return e.moveCaret(0)
}

func (e *Engine) moveCaretEnd() EngineResult {
	return e.moveCaret(runeLen(e.inputBuf.Text))
}

// backspaceComposing removes from the pending romaji buffer first (it
// occupies the cursor position conceptually); only once the buffer is
// empty does it remove a composed character before the cursor.
func (e *Engine) backspaceComposing() EngineResult {
	if e.romajiConv.Buffer() != "" {
		e.romajiConv.Backspace()
		if result, emptied := e.trySetEmptyIfDisplayEmpty(); emptied {
			return result
		}
		preedit := e.setComposingState()
		return ConsumedResult().
			WithAction(UpdatePreeditAction(preedit)).
			WithAction(UpdateAuxTextAction(e.formatAuxComposing()))
	}

	if _, ok := e.inputBuf.RemoveCharBeforeCursor(); !ok {
		return ConsumedResult()
	}
	e.liveText = ""
	if result, emptied := e.trySetEmptyIfDisplayEmpty(); emptied {
		return result
	}
	preedit := e.setComposingState()
	return ConsumedResult().
		WithAction(UpdatePreeditAction(preedit)).
		WithAction(UpdateAuxTextAction(e.formatAuxComposing()))
}

// deleteComposing removes the composed character at the cursor. Refused
// while the romaji buffer is non-empty, since the buffer occupies the
// cursor position conceptually.
func (e *Engine) deleteComposing() EngineResult {
	if e.romajiConv.Buffer() != "" {
		return ConsumedResult()
	}
	if _, ok := e.inputBuf.RemoveCharAtCursor(); !ok {
		return ConsumedResult()
	}
	e.liveText = ""
	if result, emptied := e.trySetEmptyIfDisplayEmpty(); emptied {
		return result
	}
	preedit := e.setComposingState()
	return ConsumedResult().
		WithAction(UpdatePreeditAction(preedit)).
		WithAction(UpdateAuxTextAction(e.formatAuxComposing()))
}
