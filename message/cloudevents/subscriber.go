package cloudevents

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/cloudevents/sdk-go/v2/binding"
	"github.com/cloudevents/sdk-go/v2/protocol"
	"github.com/fxsml/mediate/message"
	"golang.org/x/sync/errgroup"
)

// ErrAlreadyStarted is returned when Run is called twice.
var ErrAlreadyStarted = errors.New("cloudevents: subscriber already started")

// SubscriberConfig configures a Subscriber.
type SubscriberConfig struct {
	// Concurrency is the number of receive goroutines (default: 1).
	Concurrency int
	// ErrorHandler is called on receive, conversion and mediation errors
	// (default: no-op).
	ErrorHandler func(err error)
	// Logger is used for logging (default: slog.Default()).
	Logger message.Logger
}

// Subscriber feeds events from a CloudEvents protocol.Receiver into a
// mediation function. Each received event is converted with FromCloudEvent
// and finished with the mediation error once the function returns, so the
// protocol acknowledges only mediated events.
type Subscriber struct {
	receiver protocol.Receiver
	config   *message.Registry
	cfg      SubscriberConfig
	logger   message.Logger

	mu      sync.Mutex
	started bool
}

// NewSubscriber creates a Subscriber. Converted messages are bound to config.
func NewSubscriber(receiver protocol.Receiver, config *message.Registry, cfg SubscriberConfig) *Subscriber {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Subscriber{
		receiver: receiver,
		config:   config,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run receives events until the receiver returns io.EOF or ctx is
// canceled, calling mediate for each. It blocks until all receive
// goroutines have exited. Receive errors other than EOF are reported to the
// ErrorHandler and receiving continues.
func (s *Subscriber) Run(ctx context.Context, mediate message.MediateFunc) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for range s.cfg.Concurrency {
		g.Go(func() error {
			for {
				done, err := s.receive(gctx, mediate)
				if done {
					cancel()
					return nil
				}
				if err != nil {
					if gctx.Err() != nil {
						return nil
					}
					s.handleError(err)
				}
			}
		})
	}
	return g.Wait()
}

func (s *Subscriber) receive(ctx context.Context, mediate message.MediateFunc) (bool, error) {
	ceMsg, err := s.receiver.Receive(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return true, nil
		}
		return false, err
	}

	event, err := binding.ToEvent(ctx, ceMsg)
	if err != nil {
		s.finish(ceMsg, err)
		return false, err
	}

	msg, err := FromCloudEvent(event, s.config)
	if err != nil {
		s.finish(ceMsg, err)
		return false, err
	}

	_, err = mediate(ctx, msg)
	s.finish(ceMsg, err)
	if err != nil {
		s.logger.Error("Mediation failed",
			"component", "subscriber",
			"message_id", msg.ID(),
			"type", event.Type(),
			"error", err)
	}
	return false, err
}

func (s *Subscriber) finish(m binding.Message, err error) {
	if finishErr := m.Finish(err); finishErr != nil {
		s.logger.Error("Finish error", "error", finishErr)
	}
}

func (s *Subscriber) handleError(err error) {
	if s.cfg.ErrorHandler != nil {
		s.cfg.ErrorHandler(err)
	}
}
