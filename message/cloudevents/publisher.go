package cloudevents

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudevents/sdk-go/v2/binding"
	"github.com/cloudevents/sdk-go/v2/protocol"
	"github.com/fxsml/mediate/message"
)

// PublisherConfig configures a Publisher.
type PublisherConfig struct {
	// Halt makes the publisher stop the enclosing pipeline after a
	// successful send. Default continues.
	Halt bool
	// Logger is used for logging (default: slog.Default()).
	Logger message.Logger
}

// Publisher sends messages through a CloudEvents protocol.Sender. It is a
// mediator, so it can be registered and referenced like any sequence.
type Publisher struct {
	sender protocol.Sender
	cfg    PublisherConfig
	logger message.Logger
}

// NewPublisher creates a Publisher wrapping sender.
func NewPublisher(sender protocol.Sender, cfg PublisherConfig) *Publisher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{sender: sender, cfg: cfg, logger: logger}
}

// Publish converts msg with ToCloudEvent and sends it. A NACK from the
// protocol is returned as an error.
func (p *Publisher) Publish(ctx context.Context, msg *message.Context) error {
	e, err := ToCloudEvent(msg)
	if err != nil {
		return err
	}
	if res := p.sender.Send(ctx, binding.ToMessage(e)); !protocol.IsACK(res) {
		p.logger.Error("Message send failed",
			"component", "publisher",
			"message_id", msg.ID(),
			"type", e.Type(),
			"error", res)
		return fmt.Errorf("send %s: %w", e.ID(), res)
	}
	return nil
}

// Kind returns message.KindOther.
func (p *Publisher) Kind() message.Kind {
	return message.KindOther
}

// Mediate publishes msg. A send failure stops the pipeline with the error.
func (p *Publisher) Mediate(ctx context.Context, msg *message.Context) (bool, error) {
	if err := p.Publish(ctx, msg); err != nil {
		return false, err
	}
	return !p.cfg.Halt, nil
}

var _ message.Mediator = (*Publisher)(nil)
