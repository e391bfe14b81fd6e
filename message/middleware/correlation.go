package middleware

import (
	"context"

	"github.com/fxsml/mediate/message"
)

// CorrelationProperty is the property CorrelationID maintains.
const CorrelationProperty = "correlationid"

// CorrelationID makes sure the correlationid property is set before the
// wrapped mediator runs. A message without one is correlated by its ID.
func CorrelationID() message.Middleware {
	return func(next message.MediateFunc) message.MediateFunc {
		return func(ctx context.Context, msg *message.Context) (bool, error) {
			if _, ok := msg.Properties().Get(CorrelationProperty); !ok {
				msg.Properties().Set(CorrelationProperty, message.StringValue(msg.ID()))
			}
			return next(ctx, msg)
		}
	}
}
