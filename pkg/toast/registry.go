package toast

import (
	"sort"
	"sync"
)

// Scope is the payload-type-erased control surface of an engine.
// Every Engine[T] satisfies it, which lets a registry hold engines of
// different payload types side by side. A Scope never exposes Add:
// triggering stays with the typed layer that owns the engine.
type Scope interface {
	Dismiss(id string)
	DismissAll()
	Pause(id string)
	Resume(id string)
	Count() int
	Destroy()
}

// Registry maps scope names to engines so a host application can
// auto-discover them for zero-configuration renderer mounting. It is
// a convenience side-channel with no timing logic.
type Registry struct {
	mu     sync.RWMutex
	scopes map[string]Scope
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{scopes: make(map[string]Scope)}
}

// defaultRegistry is the process-wide registry used by WithScope.
var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// Register adds or replaces the scope under name.
func (r *Registry) Register(name string, s Scope) {
	if name == "" || s == nil {
		return
	}
	r.mu.Lock()
	r.scopes[name] = s
	r.mu.Unlock()
}

// Unregister removes the scope under name, but only if it is still
// the given instance. A destroyed engine therefore never evicts a
// replacement that was registered under the same name after it.
func (r *Registry) Unregister(name string, s Scope) {
	r.mu.Lock()
	if current, ok := r.scopes[name]; ok && current == s {
		delete(r.scopes, name)
	}
	r.mu.Unlock()
}

// Lookup returns the scope registered under name.
func (r *Registry) Lookup(name string) (Scope, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scopes[name]
	return s, ok
}

// Names returns all registered scope names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.scopes))
	for name := range r.scopes {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}
