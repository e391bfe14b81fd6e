package message

import (
	"context"
	"fmt"
	"slices"
)

// Sequence is a named, ordered chain of mediators.
type Sequence struct {
	name  string
	steps []Mediator
}

// NewSequence creates a sequence running steps in order.
func NewSequence(name string, steps ...Mediator) *Sequence {
	return &Sequence{name: name, steps: slices.Clone(steps)}
}

// Name returns the sequence name.
func (s *Sequence) Name() string {
	return s.name
}

// Kind returns KindSequence.
func (s *Sequence) Kind() Kind {
	return KindSequence
}

// Mediate runs the steps until one returns false or fails.
func (s *Sequence) Mediate(ctx context.Context, msg *Context) (bool, error) {
	return mediateAll(ctx, msg, s.steps)
}

// Template is a sequence parameterized by formal parameter names. The body
// reads parameters as properties; binding them is the caller's job (see
// Invoke), so a template can be run by any mechanism that pushes a scope.
type Template struct {
	name   string
	params []string
	body   []Mediator
}

// NewTemplate creates a template. Parameter names must be non-empty and
// unique.
func NewTemplate(name string, params []string, body ...Mediator) (*Template, error) {
	seen := make(map[string]struct{}, len(params))
	for _, p := range params {
		if p == "" {
			return nil, fmt.Errorf("template %q: parameter: %w", name, ErrEmptyName)
		}
		if _, ok := seen[p]; ok {
			return nil, fmt.Errorf("template %q: %w: %q", name, ErrDuplicateParameter, p)
		}
		seen[p] = struct{}{}
	}
	return &Template{
		name:   name,
		params: slices.Clone(params),
		body:   slices.Clone(body),
	}, nil
}

// Name returns the template name.
func (t *Template) Name() string {
	return t.name
}

// Parameters returns the formal parameter names in declaration order.
func (t *Template) Parameters() []string {
	return slices.Clone(t.params)
}

// Kind returns KindTemplate.
func (t *Template) Kind() Kind {
	return KindTemplate
}

// Mediate runs the body. See Invoke.
func (t *Template) Mediate(ctx context.Context, msg *Context) (bool, error) {
	return t.Invoke(ctx, msg)
}

// Invoke runs the body against msg, whose innermost scope is expected to hold
// the bound arguments. The first mediator returning false halts the body and
// false is returned; an empty body returns true.
func (t *Template) Invoke(ctx context.Context, msg *Context) (bool, error) {
	return mediateAll(ctx, msg, t.body)
}

var (
	_ Mediator = (*Sequence)(nil)
	_ Mediator = (*Template)(nil)
)
