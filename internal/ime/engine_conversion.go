package ime

// startConversion begins explicit conversion (Space/Down/Tab from the
// Composing phase): flushes pending romaji, runs the orchestrator over
// the full reading with the configured candidate count, and opens the
// Conversion phase.
func (e *Engine) startConversion() EngineResult {
	e.flushRomajiToComposed()
	reading := e.inputBuf.Text

	prevSuggest := e.liveText
	e.liveText = ""
	e.romajiConv.Reset()
	e.inputBuf.CursorPos = 0

	if reading == "" {
		return ConsumedResult()
	}

	var results []candidateSource
	if e.pipeline != nil {
		for _, ac := range e.pipeline.Convert(convertCtx(), reading, e.config.NumCandidates, e.truncateContextForAPI()) {
			results = append(results, candidateSource{text: ac.Text, reading: ac.Reading, annotation: ac.Source.Label()})
		}
		e.metrics.ConversionMs = e.pipeline.LastConversionMs
		e.metrics.ModelName = e.pipeline.LastModelName
		e.metrics.AdaptiveUseLightModel = e.pipeline.AdaptiveUseLightModel
	}

	cands := candidateListFromSources(results, reading)

	// If the auto-suggest preview that was on screen isn't already in the
	// fresh candidate set, keep it visible at the top rather than letting
	// it vanish when the conversion strategy changes.
	if prevSuggest != "" && prevSuggest != reading && !containsCandidateText(cands.Candidates(), prevSuggest) {
		cands = prependCandidate(cands, Candidate{Text: prevSuggest, Reading: reading})
	}

	if cands.IsEmpty() {
		preedit := PreeditWithTextUnderlined(reading)
		e.state = ComposingState(preedit, "")
		return ConsumedResult().WithAction(UpdatePreeditAction(preedit))
	}

	return e.enterConversionState(reading, cands)
}

type candidateSource struct {
	text       string
	reading    string
	annotation string
}

func candidateListFromSources(sources []candidateSource, reading string) CandidateList {
	cands := make([]Candidate, len(sources))
	for i, s := range sources {
		r := s.reading
		if r == "" {
			r = reading
		}
		cands[i] = Candidate{Text: s.text, Reading: r, Annotation: s.annotation, Index: i}
	}
	return NewCandidateList(cands)
}

func containsCandidateText(cands []Candidate, text string) bool {
	for _, c := range cands {
		if c.Text == text {
			return true
		}
	}
	return false
}

func prependCandidate(list CandidateList, c Candidate) CandidateList {
	all := append([]Candidate{c}, list.Candidates()...)
	for i := range all {
		all[i].Index = i
	}
	return NewCandidateList(all)
}

// enterConversionState transitions to the Conversion phase with reading
// and its candidate list, highlighting the first selection.
func (e *Engine) enterConversionState(reading string, cands CandidateList) EngineResult {
	selectedText, ok := cands.SelectedText()
	if !ok {
		selectedText = reading
	}

	preedit := PreeditFromSegments([]PreeditSegment{HighlightedSegment(selectedText)}, runeLen(selectedText))
	e.state = ConversionState(preedit, cands)

	return ConsumedResult().
		WithAction(UpdatePreeditAction(preedit)).
		WithAction(ShowCandidatesAction(cands)).
		WithAction(UpdateAuxTextAction(e.formatAuxConversionWithPage(reading, &cands)))
}

// processKeyConversion handles a key press while the candidate window is
// open.
func (e *Engine) processKeyConversion(key KeyEvent) EngineResult {
	switch key.Keysym {
	case KeysymReturn:
		return e.commitConversion()
	case KeysymEscape:
		return e.cancelConversion()
	case KeysymSpace, KeysymDown, KeysymTab:
		return e.nextCandidate()
	case KeysymUp:
		return e.prevCandidate()
	case KeysymPageDown:
		return e.nextCandidatePage()
	case KeysymPageUp:
		return e.prevCandidatePage()
	case KeysymBackspace:
		return e.backspaceConversion()
	}

	if key.Modifiers.Control && !key.Modifiers.Alt {
		switch key.Keysym {
		case KeysymN, KeysymNUpper:
			return e.nextCandidate()
		case KeysymP, KeysymPUpper:
			return e.prevCandidate()
		}
	}

	if digit, ok := key.Keysym.DigitValue(); ok {
		return e.selectCandidateByDigit(digit)
	}

	if ch, ok := key.ToChar(); ok && !key.Modifiers.Control && !key.Modifiers.Alt {
		return e.commitConversionAndContinue(ch)
	}

	return NotConsumedResult()
}

// selectedConversionInfo returns the selected candidate's text and
// reading, or ok=false if not in the Conversion phase.
func (e *Engine) selectedConversionInfo() (text, reading string, ok bool) {
	if e.state.Kind != StateKindConversion {
		return "", "", false
	}
	text, _ = e.state.Candidates.SelectedText()
	if sel := e.state.Candidates.Selected(); sel != nil {
		reading = sel.Reading
	}
	return text, reading, true
}

// commitConversion commits the selected candidate.
func (e *Engine) commitConversion() EngineResult {
	text, reading, ok := e.selectedConversionInfo()
	if !ok {
		return NotConsumedResult()
	}
	if text == "" {
		return ConsumedResult()
	}

	if reading != "" {
		e.recordLearning(reading, text)
	}
	e.state = EmptyState()
	e.inputBuf.Clear()

	return ConsumedResult().
		WithAction(UpdatePreeditAction(NewPreedit())).
		WithAction(HideCandidatesAction()).
		WithAction(HideAuxTextAction()).
		WithAction(CommitAction(text))
}

// commitConversionAndContinue commits the selected candidate, then feeds
// ch into a fresh word as if typed immediately after.
func (e *Engine) commitConversionAndContinue(ch rune) EngineResult {
	text, reading, ok := e.selectedConversionInfo()
	if !ok {
		return NotConsumedResult()
	}

	if reading != "" {
		e.recordLearning(reading, text)
	}
	e.state = EmptyState()
	e.inputBuf.Clear()

	next := e.startInput(ch)

	result := ConsumedResult().
		WithAction(CommitAction(text)).
		WithAction(HideCandidatesAction())
	result.Actions = append(result.Actions, next.Actions...)
	return result
}

// cancelConversion returns to the Composing phase, re-displaying the
// reading as plain hiragana.
func (e *Engine) cancelConversion() EngineResult {
	if e.state.Kind != StateKindConversion {
		return NotConsumedResult()
	}
	reading := e.inputBuf.Text

	if reading == "" {
		e.state = EmptyState()
		e.inputBuf.Clear()
		return ConsumedResult().
			WithAction(UpdatePreeditAction(NewPreedit())).
			WithAction(HideCandidatesAction()).
			WithAction(HideAuxTextAction())
	}

	e.inputBuf.Text = reading
	e.inputBuf.CursorPos = runeLen(reading)

	e.romajiConv.Reset()
	for _, ch := range reading {
		e.romajiConv.Push(ch)
	}

	preedit := e.setComposingState()
	return ConsumedResult().
		WithAction(UpdatePreeditAction(preedit)).
		WithAction(HideCandidatesAction()).
		WithAction(UpdateAuxTextAction(e.formatAuxComposing()))
}

// navigateCandidate applies op to the open candidate list and refreshes
// the preedit/candidate window/aux text.
func (e *Engine) navigateCandidate(op func(*CandidateList) bool) EngineResult {
	if e.state.Kind != StateKindConversion {
		return NotConsumedResult()
	}
	cands := &e.state.Candidates
	op(cands)
	selectedText, _ := cands.SelectedText()
	return e.updateConversionPreedit(selectedText, cands)
}

func (e *Engine) nextCandidate() EngineResult     { return e.navigateCandidate((*CandidateList).MoveNext) }
func (e *Engine) prevCandidate() EngineResult     { return e.navigateCandidate((*CandidateList).MovePrev) }
func (e *Engine) nextCandidatePage() EngineResult { return e.navigateCandidate((*CandidateList).NextPage) }
func (e *Engine) prevCandidatePage() EngineResult { return e.navigateCandidate((*CandidateList).PrevPage) }

// selectCandidateByDigit selects and immediately commits the pageIndex-th
// (1-9) candidate on the current page.
func (e *Engine) selectCandidateByDigit(digit int) EngineResult {
	if e.state.Kind != StateKindConversion {
		return NotConsumedResult()
	}
	cands := &e.state.Candidates
	sel := cands.SelectOnPage(digit)
	if sel == nil {
		return ConsumedResult()
	}
	text, reading := sel.Text, sel.Reading

	if reading != "" {
		e.recordLearning(reading, text)
	}
	e.state = EmptyState()

	return ConsumedResult().
		WithAction(UpdatePreeditAction(NewPreedit())).
		WithAction(HideCandidatesAction()).
		WithAction(HideAuxTextAction()).
		WithAction(CommitAction(text))
}

// updateConversionPreedit refreshes the highlighted preedit after a
// candidate-selection change.
func (e *Engine) updateConversionPreedit(selectedText string, cands *CandidateList) EngineResult {
	preedit := PreeditWithText(selectedText)
	preedit.SetAttributes([]PreeditAttribute{NewPreeditAttribute(0, runeLen(selectedText), AttrHighlight)})

	if p := e.state.PreeditPtr(); p != nil {
		*p = preedit
	}

	var reading string
	if sel := cands.Selected(); sel != nil {
		reading = sel.Reading
	}

	return ConsumedResult().
		WithAction(UpdatePreeditAction(preedit)).
		WithAction(ShowCandidatesAction(*cands)).
		WithAction(UpdateAuxTextAction(e.formatAuxConversionWithPage(reading, cands)))
}

// backspaceConversion returns to hiragana editing, same as Escape.
func (e *Engine) backspaceConversion() EngineResult {
	return e.cancelConversion()
}
