package ime

import "testing"

func TestStartInputRomajiEntersComposing(t *testing.T) {
	e := newTestEngine()
	result := e.startInput('k')
	if !result.Consumed {
		t.Fatalf("expected consumed result")
	}
	if e.state.Kind != StateKindComposing {
		t.Fatalf("expected Composing state, got %v", e.state.Kind)
	}
	if e.romajiConv.Buffer() != "k" {
		t.Fatalf("expected pending romaji buffer %q, got %q", "k", e.romajiConv.Buffer())
	}
}

func TestStartInputPunctuationCommitsImmediately(t *testing.T) {
	e := newTestEngine()
	result := e.startInput('@')
	if !result.Consumed {
		t.Fatalf("expected consumed result")
	}
	if len(result.Actions) != 1 || result.Actions[0].Kind != ActionCommit {
		t.Fatalf("expected a single Commit action, got %+v", result.Actions)
	}
	if e.state.Kind != StateKindEmpty {
		t.Fatalf("expected state to remain Empty after a pass-through commit")
	}
}

func TestStartInputDigitEntersComposingInsteadOfCommitting(t *testing.T) {
	e := newTestEngine()
	result := e.startInput('2')
	if e.state.Kind != StateKindComposing {
		t.Fatalf("digits must enter Composing (to support patterns like 20世紀), got %v", e.state.Kind)
	}
	for _, a := range result.Actions {
		if a.Kind == ActionCommit {
			t.Fatalf("digit should not be committed immediately")
		}
	}
}

func TestProcessKeyEmptyShiftSwitchesToAlphabetMode(t *testing.T) {
	e := newTestEngine()
	key := KeyEvent{Keysym: Keysym('a'), IsPress: true, Modifiers: KeyModifiers{Shift: true}}
	e.ProcessKey(key)
	if e.mode != ModeAlphabet {
		t.Fatalf("Shift modifier should switch to Alphabet mode, got %v", e.mode)
	}
	if e.inputBuf.Text != "a" {
		t.Fatalf("expected 'a' inserted directly in Alphabet mode, got %q", e.inputBuf.Text)
	}
}

func TestProcessKeyEmptyUppercaseKeysymSwitchesToAlphabetMode(t *testing.T) {
	// Some hosts (the fcitx5 quirk) resolve Shift into the keysym itself
	// instead of reporting it via modifiers.
	e := newTestEngine()
	key := KeyEvent{Keysym: Keysym('A'), IsPress: true}
	e.ProcessKey(key)
	if e.mode != ModeAlphabet {
		t.Fatalf("uppercase ASCII keysym alone should switch to Alphabet mode, got %v", e.mode)
	}
}

func TestProcessKeyEmptyCtrlSpaceInsertsFullWidthSpace(t *testing.T) {
	e := newTestEngine()
	key := KeyEvent{Keysym: KeysymSpace, IsPress: true, Modifiers: KeyModifiers{Control: true}}
	result := e.ProcessKey(key)
	if !result.Consumed {
		t.Fatalf("expected Ctrl+Space to be consumed")
	}
	if e.inputBuf.Text != "　" {
		t.Fatalf("expected full-width space in buffer, got %q", e.inputBuf.Text)
	}
}

func TestInputCharBuildsUpReading(t *testing.T) {
	e := newTestEngine()
	e.startInput('k')
	e.inputChar('a')
	if e.inputBuf.Text != "か" {
		t.Fatalf("expected composed reading %q, got %q", "か", e.inputBuf.Text)
	}
}

func TestInputCharAlphabetModeInsertsDirectly(t *testing.T) {
	e := newTestEngine()
	e.mode = ModeAlphabet
	e.startInput('h')
	e.inputChar('i')
	if e.inputBuf.Text != "hi" {
		t.Fatalf("expected literal %q in Alphabet mode, got %q", "hi", e.inputBuf.Text)
	}
}

func TestRefreshInputStateHidesCandidatesWithoutPipeline(t *testing.T) {
	e := newTestEngine()
	e.startInput('k')
	result := e.inputChar('a')
	foundHide := false
	for _, a := range result.Actions {
		if a.Kind == ActionHideCandidates {
			foundHide = true
		}
		if a.Kind == ActionShowCandidates {
			t.Fatalf("should not show candidates with no pipeline configured")
		}
	}
	if !foundHide {
		t.Fatalf("expected candidates to be hidden with no pipeline configured")
	}
}
