package message

import (
	"maps"
	"slices"
)

// Properties is the per-message property store. It is a stack of layers:
// layer 0 lives as long as the message, each further layer is pushed for the
// duration of one template invocation.
//
// Lookups resolve to the innermost layer that defines the key. A null Value
// stored in an inner layer shadows outer layers and reads as absent.
//
// Thread safety: Properties belongs to a single Context and is not safe for
// concurrent use. Fan-out must work on Context.Clone.
type Properties struct {
	layers []map[string]Value
}

// NewProperties returns a store with an empty global layer.
func NewProperties() *Properties {
	return &Properties{layers: []map[string]Value{{}}}
}

// Get returns the value of key from the innermost layer defining it.
func (p *Properties) Get(key string) (Value, bool) {
	for i := len(p.layers) - 1; i >= 0; i-- {
		if v, ok := p.layers[i][key]; ok {
			if v.IsNull() {
				return Value{}, false
			}
			return v, true
		}
	}
	return Value{}, false
}

// Set writes key into the innermost layer.
func (p *Properties) Set(key string, v Value) {
	p.layers[len(p.layers)-1][key] = v
}

// Remove deletes key from the innermost layer only. A definition in an outer
// layer becomes visible again.
func (p *Properties) Remove(key string) {
	delete(p.layers[len(p.layers)-1], key)
}

// Depth returns the number of layers, 1 when no scope is pushed.
func (p *Properties) Depth() int {
	return len(p.layers)
}

// Keys returns the sorted names of all visible, non-null properties.
func (p *Properties) Keys() []string {
	seen := make(map[string]bool)
	for i := len(p.layers) - 1; i >= 0; i-- {
		for k, v := range p.layers[i] {
			if _, done := seen[k]; done {
				continue
			}
			seen[k] = !v.IsNull()
		}
	}
	keys := make([]string, 0, len(seen))
	for k, visible := range seen {
		if visible {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// GetGlobal returns key from the message-lifetime layer only, ignoring
// every pushed scope.
func (p *Properties) GetGlobal(key string) (Value, bool) {
	v, ok := p.layers[0][key]
	if !ok || v.IsNull() {
		return Value{}, false
	}
	return v, true
}

// GlobalKeys returns the sorted names of the non-null properties in the
// message-lifetime layer.
func (p *Properties) GlobalKeys() []string {
	keys := make([]string, 0, len(p.layers[0]))
	for k, v := range p.layers[0] {
		if !v.IsNull() {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// Clone returns an independent copy of the whole layer stack.
func (p *Properties) Clone() *Properties {
	layers := make([]map[string]Value, len(p.layers))
	for i, l := range p.layers {
		layers[i] = maps.Clone(l)
		if layers[i] == nil {
			layers[i] = map[string]Value{}
		}
	}
	return &Properties{layers: layers}
}

// PushScope pushes a new innermost layer holding a copy of bindings and
// returns the guard that pops it. Callers must release the guard on every
// exit path, typically with defer:
//
//	scope := msg.Properties().PushScope(bindings)
//	defer scope.Release()
func (p *Properties) PushScope(bindings map[string]Value) *Scope {
	layer := maps.Clone(bindings)
	if layer == nil {
		layer = map[string]Value{}
	}
	p.layers = append(p.layers, layer)
	return &Scope{props: p, depth: len(p.layers)}
}

// Scope is the release guard for a pushed layer.
type Scope struct {
	props    *Properties
	depth    int
	released bool
}

// Depth returns the store depth the scope was pushed at.
func (s *Scope) Depth() int {
	return s.depth
}

// Release pops the layer. It is idempotent. Releasing a scope that is not the
// innermost layer means a push/pop pairing was broken and panics with
// ErrScopeIntegrity.
func (s *Scope) Release() {
	if s.released {
		return
	}
	if len(s.props.layers) != s.depth {
		panic(ErrScopeIntegrity)
	}
	s.props.layers[s.depth-1] = nil
	s.props.layers = s.props.layers[:s.depth-1]
	s.released = true
}
