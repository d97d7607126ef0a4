package ime

import "github.com/vrclipboard-ime/karukan/internal/config"

// InputMode is the engine's current character-input mode.
type InputMode int

const (
	// ModeHiragana is the default: romaji is converted to hiragana.
	ModeHiragana InputMode = iota
	// ModeKatakana displays katakana instead of hiragana.
	ModeKatakana
	// ModeAlphabet bypasses romaji conversion; characters are inserted
	// directly.
	ModeAlphabet
)

// EngineConfig configures one Engine instance.
type EngineConfig struct {
	// NumCandidates is the candidate count for explicit conversion (Space).
	NumCandidates int
	// DisplayContextLen caps how many surrounding-context characters are
	// shown in aux text.
	DisplayContextLen int
	// MaxAPIContextLen caps how many surrounding-context characters are
	// sent to the LM backend as left-context.
	MaxAPIContextLen int
	// ShortInputThreshold and BeamWidth mirror the conversion settings;
	// nothing in this package reads them, since strategy selection uses the
	// Pipeline's own Config.
	ShortInputThreshold int
	BeamWidth           int
	MaxLatencyMs        uint64
	Strategy            config.StrategyMode
}

// DefaultEngineConfig returns the out-of-the-box engine configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		NumCandidates:       3,
		DisplayContextLen:   10,
		MaxAPIContextLen:    10,
		ShortInputThreshold: 10,
		BeamWidth:           3,
		MaxLatencyMs:        100,
		Strategy:            config.StrategyAdaptive,
	}
}

// ActionKind discriminates the EngineAction variants.
type ActionKind int

const (
	ActionUpdatePreedit ActionKind = iota
	ActionShowCandidates
	ActionHideCandidates
	ActionCommit
	ActionUpdateAuxText
	ActionHideAuxText
)

// EngineAction is one instruction to the host UI layer emitted by a
// ProcessKey or Commit call. Only the fields relevant to Kind are set.
type EngineAction struct {
	Kind       ActionKind
	Preedit    Preedit
	Candidates CandidateList
	Text       string
}

// UpdatePreeditAction requests the host redraw the preedit.
func UpdatePreeditAction(p Preedit) EngineAction {
	return EngineAction{Kind: ActionUpdatePreedit, Preedit: p}
}

// ShowCandidatesAction requests the host display a candidate window.
func ShowCandidatesAction(c CandidateList) EngineAction {
	return EngineAction{Kind: ActionShowCandidates, Candidates: c}
}

// HideCandidatesAction requests the host hide the candidate window.
func HideCandidatesAction() EngineAction {
	return EngineAction{Kind: ActionHideCandidates}
}

// CommitAction requests the host insert text into the application.
func CommitAction(text string) EngineAction {
	return EngineAction{Kind: ActionCommit, Text: text}
}

// UpdateAuxTextAction requests the host update the auxiliary status text.
func UpdateAuxTextAction(text string) EngineAction {
	return EngineAction{Kind: ActionUpdateAuxText, Text: text}
}

// HideAuxTextAction requests the host hide the auxiliary status text.
func HideAuxTextAction() EngineAction {
	return EngineAction{Kind: ActionHideAuxText}
}

// EngineResult is the outcome of processing one key event.
type EngineResult struct {
	Consumed bool
	Actions  []EngineAction
}

// ConsumedResult returns a result marking the key as handled.
func ConsumedResult() EngineResult {
	return EngineResult{Consumed: true}
}

// NotConsumedResult returns a result marking the key as unhandled, so the
// host should process it normally (e.g. pass it to the application).
func NotConsumedResult() EngineResult {
	return EngineResult{}
}

// WithAction appends action and returns the result, for fluent building.
func (r EngineResult) WithAction(a EngineAction) EngineResult {
	r.Actions = append(r.Actions, a)
	return r
}

// surroundingContext is the truncated, current-line-only text around the
// cursor. Empty strings mean "no context on that side" — set once at
// activation and intentionally left untouched by Reset, since hosts may
// send reset events between activation and the first key event.
type surroundingContext struct {
	Left  string
	Right string
}

func (s surroundingContext) isZero() bool {
	return s.Left == "" && s.Right == ""
}

// conversionMetrics is the timing and adaptive-selection telemetry for the
// most recent conversion and key-processing call.
type conversionMetrics struct {
	ConversionMs          uint64
	ProcessKeyMs          uint64
	ModelName             string
	AdaptiveUseLightModel bool
}
