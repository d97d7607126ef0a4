package ime

// StateKind discriminates the three phases of the input state machine.
type StateKind int

const (
	// StateKindEmpty means no word is in progress.
	StateKindEmpty StateKind = iota
	// StateKindComposing means romaji/hiragana input is being typed but no
	// conversion has been started yet.
	StateKindComposing
	// StateKindConversion means a candidate window is open over a
	// finished reading.
	StateKindConversion
)

// InputState is the engine's current phase, carrying only the fields that
// phase uses. It plays the role the Rust original's InputState enum
// variants (Empty/Composing/Conversion) play, flattened into one struct
// since Go has no tagged union.
type InputState struct {
	Kind StateKind

	// Preedit is set for Composing and Conversion.
	Preedit Preedit
	// RomajiBuffer is the unconverted romaji snapshot, set for Composing.
	RomajiBuffer string
	// Candidates is set for Conversion.
	Candidates CandidateList
}

// EmptyState returns the Empty-phase state.
func EmptyState() InputState {
	return InputState{Kind: StateKindEmpty}
}

// ComposingState returns the Composing-phase state.
func ComposingState(preedit Preedit, romajiBuffer string) InputState {
	return InputState{Kind: StateKindComposing, Preedit: preedit, RomajiBuffer: romajiBuffer}
}

// ConversionState returns the Conversion-phase state.
func ConversionState(preedit Preedit, candidates CandidateList) InputState {
	return InputState{Kind: StateKindConversion, Preedit: preedit, Candidates: candidates}
}

// IsEmpty reports whether the state is the Empty phase.
func (s *InputState) IsEmpty() bool {
	return s.Kind == StateKindEmpty
}

// PreeditPtr returns a pointer to the state's preedit, or nil in the Empty
// phase.
func (s *InputState) PreeditPtr() *Preedit {
	if s.Kind == StateKindEmpty {
		return nil
	}
	return &s.Preedit
}

// CandidatesPtr returns a pointer to the state's candidate list, or nil
// outside the Conversion phase.
func (s *InputState) CandidatesPtr() *CandidateList {
	if s.Kind != StateKindConversion {
		return nil
	}
	return &s.Candidates
}
