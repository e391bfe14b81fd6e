package message

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ErrorHandler processes engine errors.
type ErrorHandler func(msg *Context, err error)

// EngineConfig configures the mediation engine. Numeric fields can be
// overlaid from the environment with config.Load("engine", &cfg).
type EngineConfig struct {
	// Entry is the sequence every message enters. Required.
	Entry string

	// Concurrency sets the number of messages mediated in parallel.
	// Default is 1.
	Concurrency int

	// BufferSize sets the result channel buffer size.
	// Default is 0 (unbuffered).
	BufferSize int

	// ShutdownTimeout controls shutdown on context cancellation.
	// If <= 0, workers stop immediately; otherwise they get this long to
	// finish the input before being stopped.
	ShutdownTimeout time.Duration

	// ErrorHandler is called when mediation fails.
	// Default logs via Logger.
	ErrorHandler ErrorHandler

	// Logger is used for engine diagnostics. Default: slog.Default().
	Logger Logger
}

func (c EngineConfig) parse() EngineConfig {
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
	c.Logger = loggerOrDefault(c.Logger)
	if c.ErrorHandler == nil {
		logger := c.Logger
		c.ErrorHandler = func(msg *Context, err error) {
			logger.Error("Mediation failed", "message_id", msg.ID(), "error", err)
		}
	}
	return c
}

// Result is the outcome of mediating one message.
type Result struct {
	// Context is the message after mediation.
	Context *Context
	// Continue is the flag returned by the entry sequence.
	Continue bool
	// Err is set when mediation failed.
	Err error
}

// Engine feeds messages into their entry sequence. Each message is mediated
// by a single goroutine from start to finish; different messages run in
// parallel up to Concurrency.
type Engine struct {
	cfg EngineConfig

	mu      sync.Mutex
	started bool
}

// NewEngine creates an engine.
func NewEngine(cfg EngineConfig) *Engine {
	return &Engine{cfg: cfg.parse()}
}

// Mediate runs the entry sequence from msg's configuration synchronously.
// An unknown entry sequence yields ErrUnknownSequence.
func (e *Engine) Mediate(ctx context.Context, msg *Context) (bool, error) {
	m, ok := lookup(msg, e.cfg.Entry)
	if !ok {
		return false, fmt.Errorf("entry %q: %w", e.cfg.Entry, ErrUnknownSequence)
	}
	return m.Mediate(ctx, msg)
}

// Start mediates messages from in until it is closed or ctx is canceled.
// The returned channel receives one Result per message and is closed when
// all workers have exited. Start can only be called once.
func (e *Engine) Start(ctx context.Context, in <-chan *Context) (<-chan Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return nil, ErrAlreadyStarted
	}
	e.started = true

	cfg := e.cfg
	out := make(chan Result, cfg.BufferSize)
	done := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(cfg.Concurrency)
	for range cfg.Concurrency {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				case msg, ok := <-in:
					if !ok {
						return
					}
					cont, err := e.Mediate(ctx, msg)
					if err != nil {
						cfg.ErrorHandler(msg, err)
					}
					select {
					case out <- Result{Context: msg, Continue: cont, Err: err}:
					case <-done:
						return
					}
				}
			}
		}()
	}

	wgDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgDone)
	}()

	go func() {
		select {
		case <-ctx.Done():
			if cfg.ShutdownTimeout > 0 {
				select {
				case <-wgDone:
				case <-time.After(cfg.ShutdownTimeout):
					cfg.Logger.Warn("Engine shutdown timed out", "entry", cfg.Entry)
					close(done)
				}
			} else {
				close(done)
			}
		case <-wgDone:
		}
		<-wgDone
		close(out)
	}()

	return out, nil
}
