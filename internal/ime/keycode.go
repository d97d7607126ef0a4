// Package ime implements the karukan input method state machine: the
// key-processing engine that turns a stream of XKB key events into preedit
// updates, candidate windows, and committed text, backed by the conversion
// orchestrator for kana-to-kanji candidates.
package ime

// Keysym is an XKB keysym value, matching the wire representation fcitx5
// (and other IBus/XKB-based input frameworks) use to describe a key.
type Keysym uint32

// Editing and navigation keysyms.
const (
	KeysymBackspace Keysym = 0xff08
	KeysymTab       Keysym = 0xff09
	KeysymReturn    Keysym = 0xff0d
	KeysymEscape    Keysym = 0xff1b
	KeysymDelete    Keysym = 0xffff
	KeysymHome      Keysym = 0xff50
	KeysymLeft      Keysym = 0xff51
	KeysymUp        Keysym = 0xff52
	KeysymRight     Keysym = 0xff53
	KeysymDown      Keysym = 0xff54
	KeysymPageUp    Keysym = 0xff55
	KeysymPageDown  Keysym = 0xff56
	KeysymEnd       Keysym = 0xff57
)

// Modifier keysyms. Left/right variants are distinct keysyms in XKB.
const (
	KeysymShiftL   Keysym = 0xffe1
	KeysymShiftR   Keysym = 0xffe2
	KeysymControlL Keysym = 0xffe3
	KeysymControlR Keysym = 0xffe4
	KeysymAltL     Keysym = 0xffe9
	KeysymAltR     Keysym = 0xffea
	KeysymMetaL    Keysym = 0xffe7
	KeysymMetaR    Keysym = 0xffe8
	KeysymSuperL   Keysym = 0xffeb
	KeysymSuperR   Keysym = 0xffec
	KeysymHyperL   Keysym = 0xffed
	KeysymHyperR   Keysym = 0xffee
)

// KeysymSpace is the ASCII space keysym (identical to its code point).
const KeysymSpace Keysym = 0x20

// Digit keysyms 0-9 are identical to their ASCII code points.
const (
	Keysym0 Keysym = 0x30 + iota
	Keysym1
	Keysym2
	Keysym3
	Keysym4
	Keysym5
	Keysym6
	Keysym7
	Keysym8
	Keysym9
)

// Letter keysyms needed for Ctrl-chord shortcuts (Emacs-style caret
// movement, candidate navigation, Katakana toggle, live-conversion toggle).
// Lower/upper case are distinct keysyms, since some hosts resolve Shift
// into the keysym itself rather than reporting it via modifiers.
const (
	KeysymA      Keysym = 0x61
	KeysymAUpper Keysym = 0x41
	KeysymB      Keysym = 0x62
	KeysymBUpper Keysym = 0x42
	KeysymE      Keysym = 0x65
	KeysymEUpper Keysym = 0x45
	KeysymF      Keysym = 0x66
	KeysymFUpper Keysym = 0x46
	KeysymK      Keysym = 0x6b
	KeysymKUpper Keysym = 0x4b
	KeysymL      Keysym = 0x6c
	KeysymLUpper Keysym = 0x4c
	KeysymN      Keysym = 0x6e
	KeysymNUpper Keysym = 0x4e
	KeysymP      Keysym = 0x70
	KeysymPUpper Keysym = 0x50
)

// Function keysyms F1-F12.
const (
	KeysymF1 Keysym = 0xffbe + iota
	KeysymF2
	KeysymF3
	KeysymF4
	KeysymF5
	KeysymF6
	KeysymF7
	KeysymF8
	KeysymF9
	KeysymF10
	KeysymF11
	KeysymF12
)

// IsPrintable reports whether the keysym is a printable ASCII character
// (0x20-0x7e); XKB aliases the printable ASCII range to identical keysym
// values.
func (k Keysym) IsPrintable() bool {
	return k >= 0x20 && k <= 0x7e
}

// ToChar returns the rune for a printable keysym.
func (k Keysym) ToChar() (rune, bool) {
	if !k.IsPrintable() {
		return 0, false
	}
	return rune(k), true
}

// DigitValue returns 1-9 for keysyms Keysym1-Keysym9, matching the
// Conversion-state digit candidate selection shortcut. Keysym0 is not a
// valid selection digit (pages are never that long via a single digit).
func (k Keysym) DigitValue() (int, bool) {
	if k >= Keysym1 && k <= Keysym9 {
		return int(k - Keysym0), true
	}
	return 0, false
}

// IsShift reports whether the keysym is a Shift modifier key.
func (k Keysym) IsShift() bool {
	return k == KeysymShiftL || k == KeysymShiftR
}

// IsControl reports whether the keysym is a Control modifier key.
func (k Keysym) IsControl() bool {
	return k == KeysymControlL || k == KeysymControlR
}

// IsModeToggleKey reports whether the keysym is the one-way
// Katakana/Alphabet → Hiragana mode switch. Different keyboards and hosts
// map the right-hand Cmd/Super key to different keysyms, so all of them
// are accepted.
func (k Keysym) IsModeToggleKey() bool {
	switch k {
	case KeysymAltR, KeysymSuperR, KeysymMetaR, KeysymHyperR:
		return true
	default:
		return false
	}
}

// IsModifier reports whether the keysym is any recognised modifier key.
func (k Keysym) IsModifier() bool {
	switch k {
	case KeysymShiftL, KeysymShiftR, KeysymControlL, KeysymControlR,
		KeysymAltL, KeysymAltR, KeysymMetaL, KeysymMetaR,
		KeysymSuperL, KeysymSuperR, KeysymHyperL, KeysymHyperR:
		return true
	default:
		return false
	}
}

// XKB modifier state bitmask constants, used to decode the raw modifier
// state word a host interface passes across the C ABI boundary.
const (
	ShiftMask   uint32 = 1
	ControlMask uint32 = 4
	AltMask     uint32 = 8
	SuperMask   uint32 = 64
)

// KeyModifiers is the decoded modifier-key state accompanying a KeyEvent.
type KeyModifiers struct {
	Shift   bool
	Control bool
	Alt     bool
	Super   bool
}

// ModifiersFromState decodes an XKB modifier state bitmask into KeyModifiers.
func ModifiersFromState(state uint32) KeyModifiers {
	return KeyModifiers{
		Shift:   state&ShiftMask != 0,
		Control: state&ControlMask != 0,
		Alt:     state&AltMask != 0,
		Super:   state&SuperMask != 0,
	}
}

// IsEmpty reports whether no modifier is active.
func (m KeyModifiers) IsEmpty() bool {
	return !m.Shift && !m.Control && !m.Alt && !m.Super
}

// KeyEvent is one key press or release, as delivered by the host interface.
type KeyEvent struct {
	Keysym    Keysym
	Modifiers KeyModifiers
	IsPress   bool
}

// PressKey returns a plain key-press event with no modifiers, for tests and
// for hosts that only report presses.
func PressKey(keysym Keysym) KeyEvent {
	return KeyEvent{Keysym: keysym, IsPress: true}
}

// IsPrintablePress reports whether the event is a press of a printable,
// non-Control, non-Alt character.
func (k KeyEvent) IsPrintablePress() bool {
	return k.IsPress && k.Keysym.IsPrintable() && !k.Modifiers.Control && !k.Modifiers.Alt
}

// ToChar returns the rune for a printable key press, or ok=false otherwise.
func (k KeyEvent) ToChar() (rune, bool) {
	if !k.IsPrintablePress() {
		return 0, false
	}
	return k.Keysym.ToChar()
}
