package engine

import "sync"

// Registry tracks which engine is currently allowed to record variations.
//
// Applications editing several documents share one Registry between their
// engines and switch the active one when the user changes document.
// Switching is not transactional.
type Registry struct {
	mu     sync.RWMutex
	active *Engine
}

// DefaultRegistry is shared by engines created without WithRegistry.
var DefaultRegistry = NewRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Activate makes e the active engine and returns the previously active one.
func (r *Registry) Activate(e *Engine) *Engine {
	r.mu.Lock()
	defer r.mu.Unlock()

	previous := r.active
	r.active = e
	return previous
}

// Active returns the active engine, or nil.
func (r *Registry) Active() *Engine {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// IsActive reports whether e is the active engine.
func (r *Registry) IsActive(e *Engine) bool {
	return r.Active() == e
}

// Deactivate clears the active engine if it is e.
func (r *Registry) Deactivate(e *Engine) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != e {
		return false
	}
	r.active = nil
	return true
}
