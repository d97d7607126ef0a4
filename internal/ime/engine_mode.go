package ime

// enterKatakanaMode switches to Katakana mode. Idempotent: a no-op if
// already in Katakana. Clears any live-conversion preview so Katakana
// takes priority on commit, and rebuilds the composing preedit (with a
// mode-indicator aux text) if there's anything to redisplay.
func (e *Engine) enterKatakanaMode() EngineResult {
	if e.mode == ModeKatakana {
		return ConsumedResult()
	}
	e.mode = ModeKatakana
	e.liveText = ""

	if e.inputBuf.Text == "" && e.romajiConv.Buffer() == "" {
		return ConsumedResult().WithAction(UpdateAuxTextAction(e.formatAuxComposing()))
	}

	preedit := e.setComposingState()
	return ConsumedResult().
		WithAction(UpdatePreeditAction(preedit)).
		WithAction(UpdateAuxTextAction(e.formatAuxComposing()))
}

// toggleLiveConversion flips the live-conversion flag and shows a toast in
// aux text. Works from any state.
func (e *Engine) toggleLiveConversion() EngineResult {
	e.liveEnabled = !e.liveEnabled
	status := "ライブ変換: OFF"
	if e.liveEnabled {
		status = "ライブ変換: ON"
	}
	return ConsumedResult().WithAction(UpdateAuxTextAction(status))
}
