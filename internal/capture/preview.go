// SPDX-License-Identifier: MIT

package capture

import (
	"sync"

	"github.com/google/uuid"
)

// PreviewRegistry issues revocable preview handles over in-memory file
// bytes, the way a browser hands out object URLs. A handle stops resolving
// the moment it is released; holding on to it afterwards is a caller bug.
type PreviewRegistry struct {
	mu      sync.Mutex
	entries map[string][]byte
}

// NewPreviewRegistry creates an empty registry.
func NewPreviewRegistry() *PreviewRegistry {
	return &PreviewRegistry{entries: make(map[string][]byte)}
}

// Create registers data and returns a live handle for it.
func (r *PreviewRegistry) Create(name string, data []byte) *PreviewHandle {
	id := uuid.NewString()

	r.mu.Lock()
	r.entries[id] = data
	r.mu.Unlock()

	return &PreviewHandle{id: id, name: name, reg: r}
}

// Open resolves a handle ID to its bytes. ok is false for released or
// unknown handles.
func (r *PreviewRegistry) Open(id string) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.entries[id]
	return data, ok
}

// Live reports the number of unreleased handles.
func (r *PreviewRegistry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *PreviewRegistry) release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// PreviewHandle is a revocable reference to previewable file bytes.
type PreviewHandle struct {
	id   string
	name string
	reg  *PreviewRegistry

	once sync.Once
}

// ID returns the handle's opaque identifier.
func (h *PreviewHandle) ID() string { return h.id }

// Name returns the file name the handle was created for.
func (h *PreviewHandle) Name() string { return h.name }

// Release revokes the handle. Safe to call more than once.
func (h *PreviewHandle) Release() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		h.reg.release(h.id)
	})
}
