package message

import (
	"context"
	"fmt"
	"slices"
)

// InvokeConfig configures an Invoke mediator.
type InvokeConfig struct {
	// Target is the template name, resolved on every call.
	Target string
	// Arguments are bound in declaration order. Empty names are skipped and
	// a repeated name keeps its last value.
	Arguments []Argument
	// Evaluator evaluates evaluated and deferred arguments. Required when
	// any argument uses one of those forms.
	Evaluator Evaluator
	// Logger receives misconfiguration warnings. Default: slog.Default().
	Logger Logger
}

// Invoke runs a template with arguments bound as a new property scope.
type Invoke struct {
	target string
	args   []Argument
	eval   Evaluator
	logger Logger
}

// NewInvoke creates an Invoke mediator. Expression arguments are syntax
// checked here so that malformed configuration fails at load time.
func NewInvoke(cfg InvokeConfig) (*Invoke, error) {
	if cfg.Target == "" {
		return nil, ErrEmptyTarget
	}
	for _, a := range cfg.Arguments {
		if err := a.Expr.check(cfg.Evaluator); err != nil {
			return nil, fmt.Errorf("invoke %q: parameter %q: %w", cfg.Target, a.Name, err)
		}
	}
	return &Invoke{
		target: cfg.Target,
		args:   slices.Clone(cfg.Arguments),
		eval:   cfg.Evaluator,
		logger: loggerOrDefault(cfg.Logger),
	}, nil
}

// Target returns the template name.
func (i *Invoke) Target() string {
	return i.target
}

// Kind returns KindOther.
func (i *Invoke) Kind() Kind {
	return KindOther
}

// Mediate resolves the target template, binds the arguments against msg,
// runs the template body in a new scope and pops the scope on every exit
// path. An unresolvable target, a target that is not a template or a failed
// argument evaluation is logged and reported as false with msg untouched.
func (i *Invoke) Mediate(ctx context.Context, msg *Context) (bool, error) {
	tmpl, ok := lookup(msg, i.target)
	if !ok {
		i.logger.Warn("Invoke target not found", "target", i.target, "message_id", msg.ID())
		return false, nil
	}
	if tmpl.Kind() != KindTemplate {
		i.logger.Warn("Invoke target is not a template",
			"target", i.target, "kind", tmpl.Kind().String(), "message_id", msg.ID())
		return false, nil
	}

	bindings, err := i.bind(msg)
	if err != nil {
		i.logger.Error("Invoke argument evaluation failed",
			"target", i.target, "message_id", msg.ID(), "error", err)
		return false, nil
	}

	i.logger.Debug("Invoking template", "target", i.target, "parameters", len(bindings),
		"depth", msg.props.Depth()+1, "message_id", msg.ID())

	scope := msg.props.PushScope(bindings)
	defer scope.Release()

	return tmpl.Mediate(ctx, msg)
}

// bind evaluates all arguments in the caller's scope.
func (i *Invoke) bind(msg *Context) (map[string]Value, error) {
	bindings := make(map[string]Value, len(i.args))
	for _, a := range i.args {
		if a.Name == "" {
			continue
		}
		v, err := a.Expr.bind(msg, i.eval)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", a.Name, err)
		}
		bindings[a.Name] = v
	}
	return bindings, nil
}

var _ Mediator = (*Invoke)(nil)
