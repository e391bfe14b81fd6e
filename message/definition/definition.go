package definition

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fxsml/mediate/message"
)

var (
	// ErrInvalidStep is returned for a step that does not name exactly one action.
	ErrInvalidStep = errors.New("definition: step must have exactly one action")

	// ErrMissingName is returned for a sequence or template without a name.
	ErrMissingName = errors.New("definition: missing name")
)

// Config configures Load.
type Config struct {
	// Evaluator compiles and evaluates {expr} and {{expr}} values.
	// Required when the definition uses expressions.
	Evaluator message.Evaluator

	// Mediators are registered before the definition, so sequences can
	// reference mediators built in code, such as a publisher.
	Mediators map[string]message.Mediator

	// Wrap, if set, is applied to every sequence and template before it is
	// registered. Use it to add middleware or instrumentation.
	Wrap func(name string, m message.Mediator) (message.Mediator, error)

	// Logger is passed to the built mediators. Default: slog.Default().
	Logger message.Logger
}

// Document is the YAML form of a mediation configuration.
type Document struct {
	Sequences []SequenceDef `yaml:"sequences"`
	Templates []TemplateDef `yaml:"templates"`
}

// SequenceDef defines a named sequence.
type SequenceDef struct {
	Name  string    `yaml:"name"`
	Steps []StepDef `yaml:"steps"`
}

// TemplateDef defines a named template with formal parameters.
type TemplateDef struct {
	Name       string    `yaml:"name"`
	Parameters []string  `yaml:"parameters"`
	Steps      []StepDef `yaml:"steps"`
}

// StepDef is one step. Exactly one field must be set.
type StepDef struct {
	Property *PropertyDef `yaml:"property"`
	Invoke   *InvokeDef   `yaml:"invoke"`
	Sequence string       `yaml:"sequence"`
	Clone    *CloneDef    `yaml:"clone"`
	Drop     bool         `yaml:"drop"`
}

// PropertyDef sets or removes a property. Value uses the argument forms
// literal, {expr} and {{expr}}.
type PropertyDef struct {
	Name   string `yaml:"name"`
	Value  string `yaml:"value"`
	Remove bool   `yaml:"remove"`
}

// InvokeDef calls a template.
type InvokeDef struct {
	Target    string   `yaml:"target"`
	Arguments []ArgDef `yaml:"arguments"`
}

// ArgDef binds one template parameter.
type ArgDef struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// CloneDef fans the message out to several sequences.
type CloneDef struct {
	Targets     []string `yaml:"targets"`
	Continue    bool     `yaml:"continue"`
	Concurrency int      `yaml:"concurrency"`
}

// Load decodes a Document from r and builds a frozen registry from it.
// Unknown fields are rejected. An empty input yields an empty registry.
func Load(r io.Reader, cfg Config) (*message.Registry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("definition: decode: %w", err)
	}
	return Build(doc, cfg)
}

// LoadFile loads the definition at path.
func LoadFile(path string, cfg Config) (*message.Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("definition: %w", err)
	}
	defer f.Close()
	return Load(f, cfg)
}

// Build builds a frozen registry from doc.
func Build(doc Document, cfg Config) (*message.Registry, error) {
	reg := message.NewRegistry()
	for name, m := range cfg.Mediators {
		if err := reg.Register(name, m); err != nil {
			return nil, err
		}
	}

	for _, def := range doc.Templates {
		if def.Name == "" {
			return nil, fmt.Errorf("template: %w", ErrMissingName)
		}
		steps, err := buildSteps(def.Steps, cfg)
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", def.Name, err)
		}
		tmpl, err := message.NewTemplate(def.Name, def.Parameters, steps...)
		if err != nil {
			return nil, err
		}
		if err := register(reg, def.Name, tmpl, cfg); err != nil {
			return nil, err
		}
	}

	for _, def := range doc.Sequences {
		if def.Name == "" {
			return nil, fmt.Errorf("sequence: %w", ErrMissingName)
		}
		steps, err := buildSteps(def.Steps, cfg)
		if err != nil {
			return nil, fmt.Errorf("sequence %q: %w", def.Name, err)
		}
		if err := register(reg, def.Name, message.NewSequence(def.Name, steps...), cfg); err != nil {
			return nil, err
		}
	}

	reg.Freeze()
	return reg, nil
}

func register(reg *message.Registry, name string, m message.Mediator, cfg Config) error {
	if cfg.Wrap != nil {
		wrapped, err := cfg.Wrap(name, m)
		if err != nil {
			return fmt.Errorf("wrap %q: %w", name, err)
		}
		m = wrapped
	}
	return reg.Register(name, m)
}

func buildSteps(defs []StepDef, cfg Config) ([]message.Mediator, error) {
	steps := make([]message.Mediator, 0, len(defs))
	for i, def := range defs {
		m, err := buildStep(def, cfg)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		steps = append(steps, m)
	}
	return steps, nil
}

func buildStep(def StepDef, cfg Config) (message.Mediator, error) {
	n := 0
	for _, set := range []bool{def.Property != nil, def.Invoke != nil, def.Sequence != "", def.Clone != nil, def.Drop} {
		if set {
			n++
		}
	}
	if n != 1 {
		return nil, ErrInvalidStep
	}

	switch {
	case def.Property != nil:
		return message.NewProperty(message.PropertyConfig{
			Name:      def.Property.Name,
			Value:     message.ParseArgument(def.Property.Value),
			Remove:    def.Property.Remove,
			Evaluator: cfg.Evaluator,
			Logger:    cfg.Logger,
		})
	case def.Invoke != nil:
		args := make([]message.Argument, len(def.Invoke.Arguments))
		for i, a := range def.Invoke.Arguments {
			args[i] = message.Argument{Name: a.Name, Expr: message.ParseArgument(a.Value)}
		}
		return message.NewInvoke(message.InvokeConfig{
			Target:    def.Invoke.Target,
			Arguments: args,
			Evaluator: cfg.Evaluator,
			Logger:    cfg.Logger,
		})
	case def.Sequence != "":
		return message.NewSequenceRef(def.Sequence, cfg.Logger), nil
	case def.Clone != nil:
		return message.NewClone(message.CloneConfig{
			Targets:        def.Clone.Targets,
			ContinueParent: def.Clone.Continue,
			Concurrency:    def.Clone.Concurrency,
			Logger:         cfg.Logger,
		}), nil
	default:
		return message.Drop(), nil
	}
}
