package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fxsml/mediate/message"
)

// ExpiryProperty is the property Deadline reads. The cloudevents adapter
// copies the expirytime extension into it.
const ExpiryProperty = "expirytime"

// ErrMessageExpired is returned when a message's expiry time has passed.
var ErrMessageExpired = errors.New("message expired")

// Deadline enforces the RFC 3339 time in the expirytime property.
// Sets a context deadline and returns ErrMessageExpired if the message expires.
// Messages without a parseable expiry pass through unchanged.
func Deadline() message.Middleware {
	return func(next message.MediateFunc) message.MediateFunc {
		return func(ctx context.Context, msg *message.Context) (bool, error) {
			expiry := expiryTime(msg)
			if expiry.IsZero() {
				return next(ctx, msg)
			}

			if time.Now().After(expiry) {
				return false, ErrMessageExpired
			}

			ctx, cancel := context.WithDeadline(ctx, expiry)
			defer cancel()

			ok, err := next(ctx, msg)
			expired := time.Now().After(expiry)
			if err != nil && errors.Is(err, context.DeadlineExceeded) && expired {
				return false, fmt.Errorf("%w: %w", ErrMessageExpired, err)
			}
			return ok, err
		}
	}
}

func expiryTime(msg *message.Context) time.Time {
	v, ok := msg.Properties().Get(ExpiryProperty)
	if !ok {
		return time.Time{}
	}
	if t, ok := v.Raw().(time.Time); ok {
		return t
	}
	t, err := time.Parse(time.RFC3339, v.String())
	if err != nil {
		return time.Time{}
	}
	return t
}
