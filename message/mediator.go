package message

import "context"

// Kind tags what a mediator can be used as when it is looked up by name.
type Kind byte

const (
	// KindOther is an ordinary pipeline step.
	KindOther Kind = iota
	// KindSequence is a named chain of mediators.
	KindSequence
	// KindTemplate is a named chain with formal parameters.
	KindTemplate
)

func (k Kind) String() string {
	switch k {
	case KindSequence:
		return "sequence"
	case KindTemplate:
		return "template"
	default:
		return "other"
	}
}

// Mediator is one step of a processing pipeline.
type Mediator interface {
	// Kind returns the capability tag used when resolving by name.
	Kind() Kind

	// Mediate processes msg. It returns false to stop the enclosing pipeline.
	// An error stops the pipeline and propagates to the caller.
	Mediate(ctx context.Context, msg *Context) (bool, error)
}

// MediateFunc is the processing signature of a Mediator.
type MediateFunc func(ctx context.Context, msg *Context) (bool, error)

// MediatorFunc adapts a function to a Mediator of KindOther.
type MediatorFunc MediateFunc

// Kind returns KindOther.
func (f MediatorFunc) Kind() Kind {
	return KindOther
}

// Mediate calls f.
func (f MediatorFunc) Mediate(ctx context.Context, msg *Context) (bool, error) {
	return f(ctx, msg)
}

// Middleware wraps a MediateFunc with additional behavior.
type Middleware func(next MediateFunc) MediateFunc

// Apply wraps m with middleware. The first middleware is the outermost.
// The returned mediator keeps the Kind of m, so a wrapped template can still
// be the target of an Invoke.
func Apply(m Mediator, mw ...Middleware) Mediator {
	if len(mw) == 0 {
		return m
	}
	fn := m.Mediate
	for i := len(mw) - 1; i >= 0; i-- {
		fn = mw[i](fn)
	}
	return &wrapped{kind: m.Kind(), fn: fn}
}

type wrapped struct {
	kind Kind
	fn   MediateFunc
}

func (w *wrapped) Kind() Kind {
	return w.kind
}

func (w *wrapped) Mediate(ctx context.Context, msg *Context) (bool, error) {
	return w.fn(ctx, msg)
}

// mediateAll runs steps in order. The first false or error stops the chain
// and is returned; an empty chain returns true.
func mediateAll(ctx context.Context, msg *Context, steps []Mediator) (bool, error) {
	for _, m := range steps {
		ok, err := m.Mediate(ctx, msg)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

var (
	_ Mediator = MediatorFunc(nil)
	_ Mediator = (*wrapped)(nil)
)
