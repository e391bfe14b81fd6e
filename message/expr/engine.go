package expr

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/fxsml/mediate/message"
)

// Config configures an Engine.
type Config struct {
	// MaxDepth bounds nested evaluation of deferred expressions.
	// Default is 32.
	MaxDepth int

	// Logger receives get-property warnings. Default: slog.Default().
	Logger message.Logger
}

func (c Config) parse() Config {
	if c.MaxDepth <= 0 {
		c.MaxDepth = 32
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Function is an expression function. Arguments are evaluated before the call.
type Function func(env *Env, args []message.Value) (message.Value, error)

// Env is the evaluation state passed to functions.
type Env struct {
	engine *Engine
	msg    *message.Context
	depth  int
}

// Message returns the message the expression is evaluated against, or nil.
func (e *Env) Message() *message.Context {
	return e.msg
}

// Logger returns the engine logger.
func (e *Env) Logger() message.Logger {
	return e.engine.cfg.Logger
}

// Evaluate evaluates src against the same message one level deeper.
func (e *Env) Evaluate(src string) (message.Value, error) {
	return e.engine.evaluate(e.msg, src, e.depth+1)
}

// Engine compiles and evaluates expressions. It is safe for concurrent use.
type Engine struct {
	cfg Config

	mu    sync.RWMutex
	funcs map[string]Function
	cache sync.Map // source → *Expression
}

// New creates an Engine with the built-in functions registered.
func New(cfg Config) *Engine {
	e := &Engine{
		cfg:   cfg.parse(),
		funcs: make(map[string]Function),
	}
	for name, fn := range builtins {
		e.funcs[name] = fn
	}
	return e
}

// Register adds or replaces a function. A prefixed name registers its
// local part.
func (e *Engine) Register(name string, fn Function) error {
	name = localName(name)
	if name == "" || fn == nil {
		return fmt.Errorf("%w: invalid registration %q", ErrUnknownFunction, name)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.funcs[name] = fn
	e.cache.Clear()
	return nil
}

// function must be called with mu held.
func (e *Engine) function(name string) (Function, bool) {
	fn, ok := e.funcs[name]
	return fn, ok
}

// Compile parses src. Results are cached by source text until the next
// Register.
func (e *Engine) Compile(src string) (*Expression, error) {
	if x, ok := e.cache.Load(src); ok {
		return x.(*Expression), nil
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	root, err := parse(src, e.function)
	if err != nil {
		return nil, err
	}
	x := &Expression{src: src, root: root, engine: e}
	e.cache.Store(src, x)
	return x, nil
}

// Check reports whether src compiles.
func (e *Engine) Check(src string) error {
	_, err := e.Compile(src)
	return err
}

// Evaluate compiles src and evaluates it against msg.
func (e *Engine) Evaluate(msg *message.Context, src string) (message.Value, error) {
	return e.evaluate(msg, src, 0)
}

func (e *Engine) evaluate(msg *message.Context, src string, depth int) (message.Value, error) {
	if depth > e.cfg.MaxDepth {
		return message.Value{}, ErrMaxDepth
	}
	x, err := e.Compile(src)
	if err != nil {
		return message.Value{}, err
	}
	return x.root.eval(&Env{engine: e, msg: msg, depth: depth})
}

// Expression is a compiled expression.
type Expression struct {
	src    string
	root   node
	engine *Engine
}

// Evaluate evaluates x against msg.
func (x *Expression) Evaluate(msg *message.Context) (message.Value, error) {
	return x.root.eval(&Env{engine: x.engine, msg: msg})
}

func (x *Expression) String() string {
	return x.src
}

var _ message.Evaluator = (*Engine)(nil)
