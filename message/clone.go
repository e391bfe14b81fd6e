package message

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"
)

// CloneConfig configures a Clone mediator.
type CloneConfig struct {
	// Targets are sequence names, each run on its own copy of the message.
	Targets []string
	// ContinueParent is returned to the enclosing pipeline once all
	// branches finish without error.
	ContinueParent bool
	// Concurrency limits parallel branches. Default: no limit.
	Concurrency int
	// OnBranch, if set, receives each branch context after its target ran.
	OnBranch func(target string, branch *Context, ok bool)
	// Logger receives unresolved targets. Default: slog.Default().
	Logger Logger
}

// Clone fans a message out to several sequences in parallel. Every branch
// works on Context.Clone, so scopes pushed in one branch are never visible
// to another branch or to the parent.
type Clone struct {
	cfg    CloneConfig
	logger Logger
}

// NewClone creates a Clone mediator.
func NewClone(cfg CloneConfig) *Clone {
	cfg.Targets = slices.Clone(cfg.Targets)
	return &Clone{cfg: cfg, logger: loggerOrDefault(cfg.Logger)}
}

// Kind returns KindOther.
func (c *Clone) Kind() Kind {
	return KindOther
}

// Mediate runs all branches and waits for them. The first branch error is
// returned. Unresolved targets are logged and skipped.
func (c *Clone) Mediate(ctx context.Context, msg *Context) (bool, error) {
	g, gctx := errgroup.WithContext(ctx)
	if c.cfg.Concurrency > 0 {
		g.SetLimit(c.cfg.Concurrency)
	}

	for _, target := range c.cfg.Targets {
		m, ok := lookup(msg, target)
		if !ok {
			c.logger.Warn("Clone target not found", "target", target, "message_id", msg.ID())
			continue
		}
		branch := msg.Clone()
		g.Go(func() error {
			ok, err := m.Mediate(gctx, branch)
			if err != nil {
				return fmt.Errorf("clone target %q: %w", target, err)
			}
			if c.cfg.OnBranch != nil {
				c.cfg.OnBranch(target, branch, ok)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return false, err
	}
	return c.cfg.ContinueParent, nil
}

var _ Mediator = (*Clone)(nil)
