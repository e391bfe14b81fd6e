// Example: CloudEvents over HTTP mediated by a YAML definition.
//
// Run: go run ./message/example
//
// Settings are read from the environment and an optional .env file:
//
//	MEDIATE_APP_PORT=8080
//	MEDIATE_APP_DEFINITION=./mediation.yaml
//	MEDIATE_APP_TARGET=http://localhost:9090/
//	MEDIATE_ENGINE_ENTRY=main
//
// Test with:
//
//	curl -X POST http://localhost:8080/ \
//	  -H "Content-Type: application/json" \
//	  -H "Ce-Id: 123" \
//	  -H "Ce-Type: order.created" \
//	  -H "Ce-Source: /test" \
//	  -H "Ce-To: urn:billing" \
//	  -H "Ce-Specversion: 1.0" \
//	  -d '{"order_id": "ABC123", "amount": 99.99}'
package main

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/fxsml/mediate/config"
	"github.com/fxsml/mediate/message"
	ce "github.com/fxsml/mediate/message/cloudevents"
	"github.com/fxsml/mediate/message/definition"
	"github.com/fxsml/mediate/message/expr"
	"github.com/fxsml/mediate/message/middleware"
	"github.com/fxsml/mediate/message/telemetry"
)

//go:embed mediation.yaml
var defaultDefinition []byte

type appConfig struct {
	Port       int
	Definition string
	Target     string
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	if err := run(logger); err != nil {
		logger.Error("Example failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	loader := config.Loader{}
	if _, err := os.Stat(".env"); err == nil {
		loader.Files = []string{".env"}
	}

	app := appConfig{Port: 8080}
	if err := loader.Load("app", &app); err != nil {
		return err
	}
	engineCfg := message.EngineConfig{Entry: "main", Logger: logger}
	if err := loader.Load("engine", &engineCfg); err != nil {
		return err
	}
	exprCfg := expr.Config{Logger: logger}
	if err := loader.Load("expr", &exprCfg); err != nil {
		return err
	}

	publish, err := newPublisher(app.Target, logger)
	if err != nil {
		return err
	}

	defCfg := definition.Config{
		Evaluator: expr.New(exprCfg),
		Mediators: map[string]message.Mediator{
			"publish": message.Apply(publish, middleware.Retry(middleware.RetryConfig{
				Backoff: middleware.ExponentialBackoff(100*time.Millisecond, 2, 2*time.Second, 0.2),
			})),
		},
		Logger: logger,
		Wrap: func(name string, m message.Mediator) (message.Mediator, error) {
			return telemetry.Instrument(name, message.Apply(m,
				middleware.Recover(),
				middleware.CorrelationID(),
				middleware.Deadline(),
				middleware.Log(name, logger),
			))
		},
	}
	var reg *message.Registry
	if app.Definition != "" {
		reg, err = definition.LoadFile(app.Definition, defCfg)
	} else {
		reg, err = definition.Load(bytes.NewReader(defaultDefinition), defCfg)
	}
	if err != nil {
		return err
	}
	logger.Info("Definition loaded", "names", reg.Names())

	p, err := cloudevents.NewHTTP(cloudevents.WithPort(app.Port))
	if err != nil {
		return err
	}

	engine := message.NewEngine(engineCfg)
	sub := ce.NewSubscriber(p, reg, ce.SubscriberConfig{Logger: logger})

	go func() {
		if err := p.OpenInbound(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("HTTP receiver stopped", "error", err)
		}
	}()

	logger.Info("Listening", "port", app.Port, "entry", engineCfg.Entry)
	return sub.Run(ctx, engine.Mediate)
}

// newPublisher sends to target over HTTP, or only logs when no target is set.
func newPublisher(target string, logger *slog.Logger) (message.Mediator, error) {
	if target == "" {
		return message.MediatorFunc(func(_ context.Context, msg *message.Context) (bool, error) {
			routeTo, _ := msg.Properties().Get("routeto")
			logger.Info("Would publish", "message_id", msg.ID(), "routeto", routeTo.String())
			return true, nil
		}), nil
	}
	sender, err := cloudevents.NewHTTP(cloudevents.WithTarget(target))
	if err != nil {
		return nil, err
	}
	return ce.NewPublisher(sender, ce.PublisherConfig{Logger: logger}), nil
}
