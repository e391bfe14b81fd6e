package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/fxsml/mediate/message"
)

// Log records entry and exit of the wrapped mediator at debug level, with
// the scope depth on both sides. Failures are logged at error level.
func Log(name string, logger message.Logger) message.Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next message.MediateFunc) message.MediateFunc {
		return func(ctx context.Context, msg *message.Context) (bool, error) {
			start := time.Now()
			logger.Debug("Mediation started",
				"mediator", name,
				"message_id", msg.ID(),
				"depth", msg.Properties().Depth())

			ok, err := next(ctx, msg)

			if err != nil {
				logger.Error("Mediation failed",
					"mediator", name,
					"message_id", msg.ID(),
					"error", err,
					"duration", time.Since(start))
				return ok, err
			}
			logger.Debug("Mediation finished",
				"mediator", name,
				"message_id", msg.ID(),
				"continue", ok,
				"depth", msg.Properties().Depth(),
				"duration", time.Since(start))
			return ok, nil
		}
	}
}
