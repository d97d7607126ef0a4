// Command karukan-host is the cgo C ABI shim that desktop input frameworks
// (fcitx5, ibus, and similar) load via -buildmode=c-shared. It is a thin
// translation layer: every exported function decodes its C arguments,
// calls into internal/hostabi, and encodes the result back into C types.
// No IME logic lives here.
package main

/*
#include <stdint.h>
#include <stdlib.h>
*/
import "C"

import (
	"unsafe"

	"github.com/vrclipboard-ime/karukan/internal/hostabi"
	"github.com/vrclipboard-ime/karukan/internal/ime"
	"github.com/vrclipboard-ime/karukan/internal/lmfacade"
	"github.com/vrclipboard-ime/karukan/internal/lmfacade/mock"
)

// registry owns every live handle for the lifetime of the loaded shared
// library. There is exactly one per process, mirroring the original's
// process-wide heap of raw KarukanEngine pointers.
var registry = hostabi.NewRegistry()

// hostProviderFactory is the model backend this shared library ships with.
// Swapping in a real GGUF-backed lmfacade.Provider implementation requires
// no changes to hostabi or this shim — only this one factory function.
func hostProviderFactory(variantID string, _ uint32) (lmfacade.Provider, error) {
	return &mock.Provider{Name: variantID}, nil
}

//export karukan_engine_new
func karukan_engine_new() C.uint64_t {
	h := hostabi.NewHandle(hostProviderFactory)
	return C.uint64_t(registry.Register(h))
}

//export karukan_engine_init
func karukan_engine_init(handle C.uint64_t) C.int {
	h := registry.Get(hostabi.HandleID(handle))
	if h == nil {
		return -1
	}
	if err := h.Init(); err != nil {
		return -1
	}
	return 0
}

//export karukan_engine_free
func karukan_engine_free(handle C.uint64_t) {
	registry.Release(hostabi.HandleID(handle))
}

//export karukan_engine_process_key
func karukan_engine_process_key(handle C.uint64_t, keysym C.uint32_t, state C.uint32_t, isRelease C.int) C.int {
	h := registry.Get(hostabi.HandleID(handle))
	if h == nil {
		return 0
	}
	key := ime.KeyEvent{
		Keysym:    ime.Keysym(keysym),
		Modifiers: ime.ModifiersFromState(uint32(state)),
		IsPress:   isRelease == 0,
	}
	if h.ProcessKey(key) {
		return 1
	}
	return 0
}

//export karukan_engine_reset
func karukan_engine_reset(handle C.uint64_t) {
	if h := registry.Get(hostabi.HandleID(handle)); h != nil {
		h.Reset()
	}
}

//export karukan_engine_set_surrounding_text
func karukan_engine_set_surrounding_text(handle C.uint64_t, text *C.char, cursorChars C.uint32_t) {
	if text == nil {
		return
	}
	h := registry.Get(hostabi.HandleID(handle))
	if h == nil {
		return
	}
	h.SetSurroundingText(C.GoString(text), uint32(cursorChars))
}

//export karukan_engine_commit
func karukan_engine_commit(handle C.uint64_t) C.int {
	h := registry.Get(hostabi.HandleID(handle))
	if h == nil {
		return 0
	}
	if h.Commit() {
		return 1
	}
	return 0
}

//export karukan_engine_save_learning
func karukan_engine_save_learning(handle C.uint64_t) {
	if h := registry.Get(hostabi.HandleID(handle)); h != nil {
		h.SaveLearning()
	}
}

//export karukan_engine_is_empty
func karukan_engine_is_empty(handle C.uint64_t) C.int {
	h := registry.Get(hostabi.HandleID(handle))
	if h == nil || h.IsEmpty() {
		return 1
	}
	return 0
}

// ── preedit ──────────────────────────────────────────────────────────────────

//export karukan_engine_has_preedit
func karukan_engine_has_preedit(handle C.uint64_t) C.int {
	h := registry.Get(hostabi.HandleID(handle))
	return boolToC(h != nil && h.Preedit.Dirty)
}

//export karukan_engine_get_preedit
func karukan_engine_get_preedit(handle C.uint64_t) *C.char {
	h := registry.Get(hostabi.HandleID(handle))
	if h == nil {
		return nil
	}
	return C.CString(h.Preedit.Text)
}

//export karukan_engine_get_preedit_len
func karukan_engine_get_preedit_len(handle C.uint64_t) C.uint32_t {
	h := registry.Get(hostabi.HandleID(handle))
	if h == nil {
		return 0
	}
	return C.uint32_t(len(h.Preedit.Text))
}

//export karukan_engine_get_preedit_caret
func karukan_engine_get_preedit_caret(handle C.uint64_t) C.uint32_t {
	h := registry.Get(hostabi.HandleID(handle))
	if h == nil {
		return 0
	}
	return C.uint32_t(h.Preedit.CaretBytes)
}

// ── commit ───────────────────────────────────────────────────────────────────

//export karukan_engine_has_commit
func karukan_engine_has_commit(handle C.uint64_t) C.int {
	h := registry.Get(hostabi.HandleID(handle))
	return boolToC(h != nil && h.Commit.Dirty)
}

//export karukan_engine_get_commit
func karukan_engine_get_commit(handle C.uint64_t) *C.char {
	h := registry.Get(hostabi.HandleID(handle))
	if h == nil {
		return nil
	}
	return C.CString(h.Commit.Text)
}

//export karukan_engine_get_commit_len
func karukan_engine_get_commit_len(handle C.uint64_t) C.uint32_t {
	h := registry.Get(hostabi.HandleID(handle))
	if h == nil {
		return 0
	}
	return C.uint32_t(len(h.Commit.Text))
}

// ── candidates ───────────────────────────────────────────────────────────────

//export karukan_engine_has_candidates
func karukan_engine_has_candidates(handle C.uint64_t) C.int {
	h := registry.Get(hostabi.HandleID(handle))
	return boolToC(h != nil && h.Candidates.Dirty)
}

//export karukan_engine_should_hide_candidates
func karukan_engine_should_hide_candidates(handle C.uint64_t) C.int {
	h := registry.Get(hostabi.HandleID(handle))
	return boolToC(h != nil && h.Candidates.Hide)
}

//export karukan_engine_get_candidate_count
func karukan_engine_get_candidate_count(handle C.uint64_t) C.uint32_t {
	h := registry.Get(hostabi.HandleID(handle))
	if h == nil {
		return 0
	}
	return C.uint32_t(h.Candidates.Count)
}

//export karukan_engine_get_candidate
func karukan_engine_get_candidate(handle C.uint64_t, index C.uint32_t) *C.char {
	h := registry.Get(hostabi.HandleID(handle))
	if h == nil || int(index) >= len(h.Candidates.Texts) {
		return nil
	}
	return C.CString(h.Candidates.Texts[index])
}

//export karukan_engine_get_candidate_annotation
func karukan_engine_get_candidate_annotation(handle C.uint64_t, index C.uint32_t) *C.char {
	h := registry.Get(hostabi.HandleID(handle))
	if h == nil || int(index) >= len(h.Candidates.Annotations) {
		return nil
	}
	return C.CString(h.Candidates.Annotations[index])
}

//export karukan_engine_get_candidate_cursor
func karukan_engine_get_candidate_cursor(handle C.uint64_t) C.uint32_t {
	h := registry.Get(hostabi.HandleID(handle))
	if h == nil {
		return 0
	}
	return C.uint32_t(h.Candidates.Cursor)
}

// ── aux text ─────────────────────────────────────────────────────────────────

//export karukan_engine_has_aux
func karukan_engine_has_aux(handle C.uint64_t) C.int {
	h := registry.Get(hostabi.HandleID(handle))
	return boolToC(h != nil && h.Aux.Dirty)
}

//export karukan_engine_get_aux
func karukan_engine_get_aux(handle C.uint64_t) *C.char {
	h := registry.Get(hostabi.HandleID(handle))
	if h == nil {
		return nil
	}
	return C.CString(h.Aux.Text)
}

//export karukan_engine_get_aux_len
func karukan_engine_get_aux_len(handle C.uint64_t) C.uint32_t {
	h := registry.Get(hostabi.HandleID(handle))
	if h == nil {
		return 0
	}
	return C.uint32_t(len(h.Aux.Text))
}

// ── timing ───────────────────────────────────────────────────────────────────

//export karukan_engine_get_last_conversion_ms
func karukan_engine_get_last_conversion_ms(handle C.uint64_t) C.uint64_t {
	h := registry.Get(hostabi.HandleID(handle))
	if h == nil {
		return 0
	}
	return C.uint64_t(h.Engine.LastConversionMs())
}

//export karukan_engine_get_last_process_key_ms
func karukan_engine_get_last_process_key_ms(handle C.uint64_t) C.uint64_t {
	h := registry.Get(hostabi.HandleID(handle))
	if h == nil {
		return 0
	}
	return C.uint64_t(h.Engine.LastProcessKeyMs())
}

// ── string ownership ─────────────────────────────────────────────────────────

//export karukan_free_string
func karukan_free_string(s *C.char) {
	C.free(unsafe.Pointer(s))
}

func boolToC(b bool) C.int {
	if b {
		return 1
	}
	return 0
}

func main() {}
