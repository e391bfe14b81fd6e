package middleware_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fxsml/mediate/message"
	"github.com/fxsml/mediate/message/middleware"
)

func TestDeadline(t *testing.T) {
	t.Run("passes through when no expirytime", func(t *testing.T) {
		called := false
		fn := middleware.Deadline()(func(context.Context, *message.Context) (bool, error) {
			called = true
			return true, nil
		})

		ok, err := fn(context.Background(), message.NewContext(message.Envelope{}, nil))
		if err != nil || !ok {
			t.Errorf("unexpected result: %v, %v", ok, err)
		}
		if !called {
			t.Error("expected mediator to be called")
		}
	})

	t.Run("returns ErrMessageExpired for past expiry", func(t *testing.T) {
		called := false
		fn := middleware.Deadline()(func(context.Context, *message.Context) (bool, error) {
			called = true
			return true, nil
		})

		msg := message.NewContext(message.Envelope{}, nil)
		msg.Properties().Set(middleware.ExpiryProperty,
			message.StringValue(time.Now().Add(-time.Hour).Format(time.RFC3339)))

		_, err := fn(context.Background(), msg)
		if !errors.Is(err, middleware.ErrMessageExpired) {
			t.Errorf("expected ErrMessageExpired, got %v", err)
		}
		if called {
			t.Error("expected mediator not to be called")
		}
	})

	t.Run("sets context deadline", func(t *testing.T) {
		expiry := time.Now().Add(time.Hour)
		var got time.Time
		fn := middleware.Deadline()(func(ctx context.Context, _ *message.Context) (bool, error) {
			got, _ = ctx.Deadline()
			return true, nil
		})

		msg := message.NewContext(message.Envelope{}, nil)
		msg.Properties().Set(middleware.ExpiryProperty, message.OpaqueValue(expiry))

		if _, err := fn(context.Background(), msg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.Equal(expiry) {
			t.Errorf("deadline = %v, want %v", got, expiry)
		}
	})

	t.Run("wraps deadline exceeded", func(t *testing.T) {
		fn := middleware.Deadline()(func(ctx context.Context, _ *message.Context) (bool, error) {
			<-ctx.Done()
			return false, ctx.Err()
		})

		msg := message.NewContext(message.Envelope{}, nil)
		msg.Properties().Set(middleware.ExpiryProperty, message.OpaqueValue(time.Now().Add(20*time.Millisecond)))

		_, err := fn(context.Background(), msg)
		if !errors.Is(err, middleware.ErrMessageExpired) || !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected wrapped ErrMessageExpired, got %v", err)
		}
	})
}
