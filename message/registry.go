package message

import (
	"fmt"
	"slices"
	"sync"
)

// Registry maps names to sequences and templates. It is populated during
// configuration load, then frozen and shared read-only by all messages.
// Lookups are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Mediator
	frozen  bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Mediator)}
}

// Register adds m under name.
// Returns ErrEmptyName, ErrNilMediator, ErrDuplicateSequence or
// ErrRegistryFrozen.
func (r *Registry) Register(name string, m Mediator) error {
	if name == "" {
		return ErrEmptyName
	}
	if m == nil {
		return fmt.Errorf("register %q: %w", name, ErrNilMediator)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("register %q: %w", name, ErrRegistryFrozen)
	}
	if _, ok := r.entries[name]; ok {
		return fmt.Errorf("register %q: %w", name, ErrDuplicateSequence)
	}
	r.entries[name] = m
	return nil
}

// Freeze ends the load phase. Later Register calls fail.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Lookup returns the mediator registered under name.
func (r *Registry) Lookup(name string) (Mediator, bool) {
	r.mu.RLock()
	m, ok := r.entries[name]
	r.mu.RUnlock()
	return m, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	r.mu.RUnlock()
	slices.Sort(names)
	return names
}

// lookup resolves name from msg's configuration, tolerating a nil registry.
func lookup(msg *Context, name string) (Mediator, bool) {
	if msg.config == nil {
		return nil, false
	}
	return msg.config.Lookup(name)
}
