package ime

import (
	"github.com/vrclipboard-ime/karukan/internal/orchestrator"
	"github.com/vrclipboard-ime/karukan/internal/romaji"
)

func isASCIIDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

// pushRomajiAndGetDelta pushes ch through the romaji converter and returns
// the event plus whatever text was newly appended to Output as a result
// (covering both converted hiragana and pass-through punctuation, since
// the converter writes pass-through runes straight to Output too).
func (e *Engine) pushRomajiAndGetDelta(ch rune) (romaji.ConversionEvent, string) {
	before := runeLen(e.romajiConv.Output())
	ev := e.romajiConv.Push(ch)
	after := []rune(e.romajiConv.Output())
	if len(after) > before {
		return ev, string(after[before:])
	}
	return ev, ""
}

// processKeyEmpty handles a key press while no word is in progress.
func (e *Engine) processKeyEmpty(key KeyEvent) EngineResult {
	if key.Modifiers.Control && key.Keysym == KeysymSpace {
		e.romajiConv.Reset()
		e.inputBuf.Clear()
		e.inputBuf.Insert("　")
		preedit := e.setComposingState()
		return ConsumedResult().
			WithAction(UpdatePreeditAction(preedit)).
			WithAction(UpdateAuxTextAction(e.formatAuxComposing()))
	}

	if key.Modifiers.Control || key.Modifiers.Alt {
		return NotConsumedResult()
	}

	ch, ok := key.ToChar()
	if !ok {
		return NotConsumedResult()
	}

	// fcitx5 may resolve Shift into the keysym itself (sending 'A' instead
	// of 'a'+shift), so an uppercase keysym alone also signals the switch.
	if key.Modifiers.Shift || (ch >= 'A' && ch <= 'Z') {
		e.mode = ModeAlphabet
	}

	return e.startInput(ch)
}

// startInput begins a fresh word with ch: resets the romaji converter and
// input buffer, then either inserts ch directly (Alphabet mode) or pushes
// it through romaji conversion. A character with no romaji rule (a
// pass-through event on the very first character, such as '@') is
// committed immediately rather than
// entering Composing, except ASCII digits, which always enter Composing
// to support patterns like "20世紀".
func (e *Engine) startInput(ch rune) EngineResult {
	e.romajiConv.Reset()
	e.inputBuf.Clear()

	if e.mode == ModeAlphabet {
		e.inputBuf.Insert(string(ch))
		preedit := e.setComposingState()
		return ConsumedResult().
			WithAction(UpdatePreeditAction(preedit)).
			WithAction(UpdateAuxTextAction(e.formatAuxComposing()))
	}

	ev, delta := e.pushRomajiAndGetDelta(ch)
	if ev.Kind == romaji.EventPassThrough && !isASCIIDigit(ch) {
		return ConsumedResult().WithAction(CommitAction(string(ev.Char)))
	}
	if delta != "" {
		e.inputBuf.Insert(delta)
	}

	preedit := e.setComposingState()
	return ConsumedResult().
		WithAction(UpdatePreeditAction(preedit)).
		WithAction(UpdateAuxTextAction(e.formatAuxComposing()))
}

// inputChar adds one more character to an in-progress word.
func (e *Engine) inputChar(ch rune) EngineResult {
	if e.mode == ModeAlphabet {
		e.inputBuf.Insert(string(ch))
		return e.refreshInputState()
	}

	wasEmpty := e.inputBuf.Text == "" && e.romajiConv.Buffer() == ""
	ev, delta := e.pushRomajiAndGetDelta(ch)

	if ev.Kind == romaji.EventPassThrough && wasEmpty && !isASCIIDigit(ch) {
		return ConsumedResult().WithAction(CommitAction(string(ev.Char)))
	}
	if delta != "" {
		e.inputBuf.Insert(delta)
	}

	return e.refreshInputState()
}

// refreshInputState re-runs auto-suggest for the current reading and
// updates the preedit and candidate window.
func (e *Engine) refreshInputState() EngineResult {
	reading := e.inputBuf.Text
	if reading == "" {
		preedit := e.setComposingState()
		return ConsumedResult().
			WithAction(UpdatePreeditAction(preedit)).
			WithAction(HideCandidatesAction()).
			WithAction(UpdateAuxTextAction(e.formatAuxComposing()))
	}

	if e.mode == ModeAlphabet || e.pipeline == nil {
		e.liveText = ""
		preedit := e.setComposingState()
		return ConsumedResult().
			WithAction(UpdatePreeditAction(preedit)).
			WithAction(HideCandidatesAction()).
			WithAction(UpdateAuxTextAction(e.formatAuxComposing()))
	}

	results := e.pipeline.Convert(convertCtx(), reading, 1, e.truncateContextForAPI())
	e.metrics.ConversionMs = e.pipeline.LastConversionMs
	e.metrics.ModelName = e.pipeline.LastModelName
	e.metrics.AdaptiveUseLightModel = e.pipeline.AdaptiveUseLightModel

	var suggestion string
	if len(results) > 0 {
		suggestion = results[0].Text
	}
	useful := suggestion != "" && suggestion != reading

	if e.liveEnabled && e.mode != ModeKatakana && useful {
		e.liveText = suggestion
		preedit := e.buildComposingPreedit()
		e.state = ComposingState(preedit, e.romajiConv.Buffer())
		return ConsumedResult().
			WithAction(UpdatePreeditAction(preedit)).
			WithAction(ShowCandidatesAction(candidatesFromAnnotated(results, reading))).
			WithAction(UpdateAuxTextAction(e.formatAuxSuggest(reading)))
	}

	e.liveText = ""
	preedit := e.setComposingState()
	result := ConsumedResult().
		WithAction(UpdatePreeditAction(preedit)).
		WithAction(UpdateAuxTextAction(e.formatAuxSuggest(reading)))
	if useful && len(results) > 1 {
		return result.WithAction(ShowCandidatesAction(candidatesFromAnnotated(results, reading)))
	}
	return result.WithAction(HideCandidatesAction())
}

// processKeyComposing handles a key press while a word is being typed but
// no conversion has started.
func (e *Engine) processKeyComposing(key KeyEvent) EngineResult {
	if key.Modifiers.Control && !key.Modifiers.Alt {
		switch key.Keysym {
		case KeysymSpace:
			e.inputBuf.Insert("　")
			preedit := e.setComposingState()
			return ConsumedResult().
				WithAction(UpdatePreeditAction(preedit)).
				WithAction(UpdateAuxTextAction(e.formatAuxComposing()))
		case KeysymK, KeysymKUpper:
			return e.enterKatakanaMode()
		case KeysymA, KeysymAUpper:
			return e.moveCaretHome()
		case KeysymB, KeysymBUpper:
			return e.moveCaretLeft()
		case KeysymE, KeysymEUpper:
			return e.moveCaretEnd()
		case KeysymF, KeysymFUpper:
			return e.moveCaretRight()
		}
	}

	switch key.Keysym {
	case KeysymReturn:
		return e.commitComposing()
	case KeysymEscape:
		return e.cancelComposing()
	case KeysymBackspace:
		return e.backspaceComposing()
	case KeysymDelete:
		return e.deleteComposing()
	case KeysymSpace:
		if e.mode == ModeAlphabet {
			return e.inputChar(' ')
		}
		return e.startConversion()
	case KeysymDown, KeysymTab:
		return e.startConversion()
	case KeysymLeft:
		return e.moveCaretLeft()
	case KeysymRight:
		return e.moveCaretRight()
	case KeysymHome:
		return e.moveCaretHome()
	case KeysymEnd:
		return e.moveCaretEnd()
	}

	if key.Modifiers.Control || key.Modifiers.Alt {
		return NotConsumedResult()
	}

	ch, ok := key.ToChar()
	if !ok {
		return NotConsumedResult()
	}

	if (key.Modifiers.Shift || (ch >= 'A' && ch <= 'Z')) && e.mode != ModeAlphabet {
		if e.mode == ModeKatakana {
			e.bakeKatakana()
		}
		e.flushRomajiToComposed()
		e.liveText = ""
		e.mode = ModeAlphabet
	}

	return e.inputChar(ch)
}

// commitComposing commits the Composing-phase word: Katakana mode always
// wins over a live-conversion preview, which in turn wins over the raw
// reading.
func (e *Engine) commitComposing() EngineResult {
	e.flushRomajiToComposed()
	reading := e.inputBuf.Text

	var text string
	switch {
	case e.mode == ModeKatakana:
		text = romaji.HiraganaToKatakana(reading)
	case e.liveText != "":
		text = e.liveText
	default:
		text = reading
	}

	if text == "" {
		e.state = EmptyState()
		e.inputBuf.Clear()
		e.liveText = ""
		return ConsumedResult().WithAction(HideAuxTextAction())
	}

	e.recordLearning(reading, text)
	e.romajiConv.Reset()
	e.inputBuf.Clear()
	e.liveText = ""
	e.mode = ModeHiragana
	e.state = EmptyState()

	return ConsumedResult().
		WithAction(UpdatePreeditAction(NewPreedit())).
		WithAction(CommitAction(text)).
		WithAction(HideAuxTextAction())
}

// cancelComposing clears a live-conversion preview on the first Escape;
// only a second Escape (with no live preview left) performs a full cancel
// back to the Empty phase.
func (e *Engine) cancelComposing() EngineResult {
	if e.liveText != "" {
		e.liveText = ""
		preedit := e.setComposingState()
		return ConsumedResult().
			WithAction(UpdatePreeditAction(preedit)).
			WithAction(HideCandidatesAction()).
			WithAction(UpdateAuxTextAction(e.formatAuxComposing()))
	}

	e.romajiConv.Reset()
	e.inputBuf.Clear()
	e.mode = ModeHiragana
	e.state = EmptyState()

	return ConsumedResult().
		WithAction(UpdatePreeditAction(NewPreedit())).
		WithAction(HideCandidatesAction()).
		WithAction(HideAuxTextAction())
}

// candidatesFromAnnotated converts orchestrator output into the display
// candidate list, annotating each entry with its source label and falling
// back to reading when a candidate carries no override reading.
func candidatesFromAnnotated(results []orchestrator.AnnotatedCandidate, reading string) CandidateList {
	cands := make([]Candidate, len(results))
	for i, ac := range results {
		r := ac.Reading
		if r == "" {
			r = reading
		}
		cands[i] = Candidate{Text: ac.Text, Reading: r, Annotation: ac.Source.Label(), Index: i}
	}
	return NewCandidateList(cands)
}
