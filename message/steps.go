package message

import (
	"context"
	"fmt"
)

// PropertyConfig configures a Property mediator.
type PropertyConfig struct {
	// Name is the property to set or remove. Required.
	Name string
	// Value is bound like an invoke argument. A deferred value is stored
	// unevaluated.
	Value ArgumentExpr
	// Remove deletes Name from the innermost scope instead of setting it.
	Remove bool
	// Evaluator evaluates an evaluated Value.
	Evaluator Evaluator
	// Logger receives evaluation failures. Default: slog.Default().
	Logger Logger
}

// Property sets or removes a property in the innermost scope.
type Property struct {
	cfg    PropertyConfig
	logger Logger
}

// NewProperty creates a Property mediator.
func NewProperty(cfg PropertyConfig) (*Property, error) {
	if cfg.Name == "" {
		return nil, ErrEmptyName
	}
	if !cfg.Remove {
		if err := cfg.Value.check(cfg.Evaluator); err != nil {
			return nil, fmt.Errorf("property %q: %w", cfg.Name, err)
		}
	}
	return &Property{cfg: cfg, logger: loggerOrDefault(cfg.Logger)}, nil
}

// Kind returns KindOther.
func (p *Property) Kind() Kind {
	return KindOther
}

// Mediate sets or removes the property. A failed evaluation is logged and
// leaves the store unchanged; the pipeline continues.
func (p *Property) Mediate(_ context.Context, msg *Context) (bool, error) {
	if p.cfg.Remove {
		msg.props.Remove(p.cfg.Name)
		return true, nil
	}
	v, err := p.cfg.Value.bind(msg, p.cfg.Evaluator)
	if err != nil {
		p.logger.Error("Property evaluation failed",
			"property", p.cfg.Name, "message_id", msg.ID(), "error", err)
		return true, nil
	}
	msg.props.Set(p.cfg.Name, v)
	return true, nil
}

// SequenceRef runs the mediator registered under a name, resolved when the
// step runs. A template is run without binding any arguments.
type SequenceRef struct {
	key    string
	logger Logger
}

// NewSequenceRef creates a reference to the sequence named key.
func NewSequenceRef(key string, logger Logger) *SequenceRef {
	return &SequenceRef{key: key, logger: loggerOrDefault(logger)}
}

// Kind returns KindOther.
func (r *SequenceRef) Kind() Kind {
	return KindOther
}

// Mediate runs the referenced sequence. An unknown name is logged and
// halts the pipeline.
func (r *SequenceRef) Mediate(ctx context.Context, msg *Context) (bool, error) {
	m, ok := lookup(msg, r.key)
	if !ok {
		r.logger.Warn("Sequence not found", "sequence", r.key, "message_id", msg.ID())
		return false, nil
	}
	return m.Mediate(ctx, msg)
}

// Drop returns a mediator that halts the pipeline.
func Drop() Mediator {
	return MediatorFunc(func(context.Context, *Context) (bool, error) {
		return false, nil
	})
}

var (
	_ Mediator = (*Property)(nil)
	_ Mediator = (*SequenceRef)(nil)
)
