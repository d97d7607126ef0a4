// Package hostabi implements the karukan C ABI surface: an opaque handle
// over one ime.Engine plus the per-handle caches a host input framework
// polls after each call (preedit, candidate window, commit text, aux
// text, timing). The registry here replaces the original's raw engine
// pointer with a collision-resistant numeric handle, since a Go pointer
// cannot be safely retained across the cgo boundary between calls.
package hostabi

import (
	"encoding/binary"
	"sync"

	"github.com/google/uuid"
)

// HandleID is the opaque value returned to a host across the C ABI in
// place of a raw pointer.
type HandleID uint64

// Registry owns every live Handle, keyed by HandleID. A Registry is safe
// for concurrent use by multiple host threads creating/destroying distinct
// handles, even though a single Handle is not (spec: calls on one handle
// must be serialized by the host).
type Registry struct {
	mu      sync.Mutex
	entries map[HandleID]*Handle
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[HandleID]*Handle)}
}

func newHandleID() HandleID {
	id := uuid.New()
	return HandleID(binary.BigEndian.Uint64(id[:8]))
}

// Register adds h under a freshly generated id and returns it.
func (r *Registry) Register(h *Handle) HandleID {
	r.mu.Lock()
	defer r.mu.Unlock()
	for {
		id := newHandleID()
		if _, exists := r.entries[id]; exists {
			continue
		}
		r.entries[id] = h
		return id
	}
}

// Get returns the handle registered under id, or nil if id is unknown —
// the null-safe default every C ABI function falls back to.
func (r *Registry) Get(id HandleID) *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[id]
}

// Release removes id from the registry and returns the handle that was
// stored there, or nil if it was already gone.
func (r *Registry) Release(id HandleID) *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := r.entries[id]
	delete(r.entries, id)
	return h
}

// Len reports how many handles are currently live, for tests and
// diagnostics.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
