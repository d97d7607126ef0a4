package ime

import (
	"context"
	"time"

	"github.com/vrclipboard-ime/karukan/internal/orchestrator"
	"github.com/vrclipboard-ime/karukan/internal/romaji"
)

// Engine is the karukan input method's key-processing state machine. It
// owns the romaji converter, the conversion orchestrator (which in turn
// owns the dictionaries, learning cache, and LM backends), and the
// Empty/Composing/Conversion state. A single Engine is not safe for
// concurrent use: the host interface processes one key at a time per
// input context, matching a desktop IME's single-threaded event loop.
type Engine struct {
	state InputState

	romajiConv *romaji.Converter
	pipeline   *orchestrator.Pipeline

	surroundingCtx surroundingContext
	config         EngineConfig
	metrics        conversionMetrics

	mode     InputMode
	inputBuf InputBuffer

	liveEnabled bool
	liveText    string
}

// NewEngine returns an Engine over pipeline (which supplies the model
// backends, dictionaries, and learning cache) with the given
// configuration.
func NewEngine(pipeline *orchestrator.Pipeline, cfg EngineConfig) *Engine {
	return &Engine{
		state:      EmptyState(),
		romajiConv: romaji.NewConverter(),
		pipeline:   pipeline,
		config:     cfg,
		mode:       ModeHiragana,
	}
}

// LastConversionMs returns the most recent conversion's measured inference
// latency in milliseconds.
func (e *Engine) LastConversionMs() uint64 {
	return e.metrics.ConversionMs
}

// LastProcessKeyMs returns the most recent ProcessKey call's end-to-end
// latency in milliseconds.
func (e *Engine) LastProcessKeyMs() uint64 {
	return e.metrics.ProcessKeyMs
}

// ModelName returns the display name of the model used for the most
// recent conversion, falling back to the configured backend names before
// any conversion has run.
func (e *Engine) ModelName() string {
	if e.metrics.ModelName != "" {
		return e.metrics.ModelName
	}
	if e.pipeline == nil || e.pipeline.Main == nil {
		return "unknown"
	}
	main := e.pipeline.Main.DisplayName()
	if e.pipeline.Light != nil {
		return main + "+" + e.pipeline.Light.DisplayName()
	}
	return main
}

// State returns the current phase of the state machine.
func (e *Engine) State() *InputState {
	return &e.state
}

// Preedit returns the current preedit and whether one is set (false in the
// Empty phase).
func (e *Engine) Preedit() (Preedit, bool) {
	p := e.state.PreeditPtr()
	if p == nil {
		return Preedit{}, false
	}
	return *p, true
}

// Candidates returns the current candidate list and whether one is open
// (only true in the Conversion phase).
func (e *Engine) Candidates() (CandidateList, bool) {
	c := e.state.CandidatesPtr()
	if c == nil {
		return CandidateList{}, false
	}
	return *c, true
}

// IsEmpty reports whether the engine has no word in progress.
func (e *Engine) IsEmpty() bool {
	return e.state.IsEmpty()
}

// Reset returns the engine to the Empty phase. surroundingCtx is
// intentionally left untouched: it is set once when the host activates
// the input context and must survive any reset events the host sends
// between activation and the first key press.
func (e *Engine) Reset() {
	e.state = EmptyState()
	e.romajiConv.Reset()
	e.mode = ModeHiragana
	e.inputBuf.Clear()
	e.liveText = ""
	e.metrics = conversionMetrics{}
}

// trySetEmptyIfDisplayEmpty forces the Empty phase and returns a consumed
// clearing result if the current input display has become empty (e.g.
// after a backspace emptied the buffer); returns ok=false otherwise, in
// which case the caller should continue its normal handling.
func (e *Engine) trySetEmptyIfDisplayEmpty() (EngineResult, bool) {
	if e.buildInputDisplay() != "" {
		return EngineResult{}, false
	}
	e.state = EmptyState()
	e.inputBuf.Clear()
	return ConsumedResult().
		WithAction(UpdatePreeditAction(NewPreedit())).
		WithAction(HideCandidatesAction()).
		WithAction(HideAuxTextAction()), true
}

// setComposingState rebuilds the Composing-phase preedit from the current
// buffer and romaji state, stores it, and returns it.
func (e *Engine) setComposingState() Preedit {
	preedit := e.buildComposingPreedit()
	e.state = ComposingState(preedit, e.romajiConv.Buffer())
	return preedit
}

// bakeKatakana permanently converts the composed buffer to katakana,
// called when leaving Katakana mode so the preedit doesn't revert to
// hiragana display.
func (e *Engine) bakeKatakana() {
	if e.inputBuf.Text != "" {
		e.inputBuf.Text = romaji.HiraganaToKatakana(e.inputBuf.Text)
	}
}

// flushRomajiToComposed flushes any pending romaji buffer into the
// composed input buffer at the cursor.
func (e *Engine) flushRomajiToComposed() {
	if e.romajiConv.Buffer() == "" {
		return
	}
	before := runeLen(e.romajiConv.Output())
	e.romajiConv.Flush()
	after := []rune(e.romajiConv.Output())
	if len(after) > before {
		e.inputBuf.Insert(string(after[before:]))
	}
}

// SetSurroundingContext records the editor text around the cursor,
// truncated to the current line and to MaxAPIContextLen characters on each
// side (keeping the end of the left side and the start of the right
// side).
func (e *Engine) SetSurroundingContext(left, right string) {
	if idx := lastIndexByte(left, '\n'); idx >= 0 {
		left = left[idx+1:]
	}
	if idx := indexByte(right, '\n'); idx >= 0 {
		right = right[:idx]
	}

	if left == "" && right == "" {
		e.surroundingCtx = surroundingContext{}
		return
	}

	e.surroundingCtx = surroundingContext{
		Left:  truncateKeepEnd(left, e.config.MaxAPIContextLen),
		Right: truncateKeepStart(right, e.config.MaxAPIContextLen),
	}
}

// handleModeToggleKey handles the Right Alt/Super/Meta/Hyper one-way
// switch back to Hiragana mode. Returns ok=false if key is not a mode
// toggle key, in which case the caller continues normal dispatch.
func (e *Engine) handleModeToggleKey(key KeyEvent) (EngineResult, bool) {
	if !key.Keysym.IsModeToggleKey() {
		return EngineResult{}, false
	}
	if key.IsPress && e.mode != ModeHiragana {
		if e.mode == ModeKatakana {
			e.bakeKatakana()
		}
		e.mode = ModeHiragana
		e.flushRomajiToComposed()
		aux := e.formatAuxComposing()
		if e.state.Kind == StateKindComposing {
			preedit := e.setComposingState()
			return ConsumedResult().
				WithAction(UpdatePreeditAction(preedit)).
				WithAction(UpdateAuxTextAction(aux)), true
		}
		return ConsumedResult().WithAction(UpdateAuxTextAction(aux)), true
	}
	return NotConsumedResult(), true
}

// ProcessKey dispatches key to the handler for the current phase and
// records end-to-end processing latency.
func (e *Engine) ProcessKey(key KeyEvent) EngineResult {
	start := time.Now()

	if result, handled := e.handleModeToggleKey(key); handled {
		return result
	}

	if key.Keysym.IsModifier() {
		return NotConsumedResult()
	}
	if !key.IsPress {
		return NotConsumedResult()
	}

	if key.Modifiers.Control && key.Modifiers.Shift &&
		(key.Keysym == KeysymL || key.Keysym == KeysymLUpper) {
		return e.toggleLiveConversion()
	}

	if e.state.IsEmpty() {
		e.metrics.AdaptiveUseLightModel = false
		if e.pipeline != nil && e.pipeline.AdaptiveUseLightModel {
			e.pipeline.AdaptiveUseLightModel = false
			if e.pipeline.Metrics != nil {
				e.pipeline.Metrics.SetAdaptiveUseLightModel(convertCtx(), false)
			}
		}
	}

	var result EngineResult
	switch e.state.Kind {
	case StateKindEmpty:
		result = e.processKeyEmpty(key)
	case StateKindComposing:
		result = e.processKeyComposing(key)
	case StateKindConversion:
		result = e.processKeyConversion(key)
	}

	e.metrics.ProcessKeyMs = uint64(time.Since(start).Milliseconds())
	return result
}

// Commit flushes any in-progress input and returns the text that should be
// inserted into the application, recording the selection in the learning
// cache.
func (e *Engine) Commit() string {
	switch e.state.Kind {
	case StateKindEmpty:
		return ""

	case StateKindComposing:
		e.flushRomajiToComposed()
		reading := e.inputBuf.Text
		text := reading
		if e.liveText != "" {
			text = e.liveText
		}
		e.recordLearning(reading, text)
		e.romajiConv.Reset()
		e.inputBuf.Clear()
		e.liveText = ""
		e.state = EmptyState()
		e.surroundingCtx = surroundingContext{}
		return text

	case StateKindConversion:
		text, _ := e.state.Candidates.SelectedText()
		var reading string
		if sel := e.state.Candidates.Selected(); sel != nil {
			reading = sel.Reading
		}
		if reading != "" {
			e.recordLearning(reading, text)
		}
		e.inputBuf.Clear()
		e.state = EmptyState()
		e.surroundingCtx = surroundingContext{}
		return text
	}
	return ""
}

// SaveLearning persists the learning cache to path if it has unsaved
// changes. A no-op if the pipeline has no learning cache configured.
func (e *Engine) SaveLearning(path string) error {
	if e.pipeline == nil || e.pipeline.Learning == nil || !e.pipeline.Learning.IsDirty() {
		return nil
	}
	return e.pipeline.Learning.Save(path)
}

func (e *Engine) recordLearning(reading, surface string) {
	if e.pipeline == nil || e.pipeline.Learning == nil || reading == "" || surface == "" {
		return
	}
	e.pipeline.Learning.Record(reading, surface)
}

// convertCtx is a single background context used for every orchestrator
// call: ProcessKey is a synchronous, single-threaded call from the host
// interface, with no request-scoped cancellation to propagate.
func convertCtx() context.Context {
	return context.Background()
}
