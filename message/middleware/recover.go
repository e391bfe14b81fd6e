package middleware

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/fxsml/mediate/message"
)

// RecoveryError wraps a panic value with the stack trace.
type RecoveryError struct {
	// PanicValue is the original value that was passed to panic().
	PanicValue any
	// StackTrace contains the full stack trace at the point of panic.
	StackTrace string
}

func (e *RecoveryError) Error() string {
	return fmt.Sprintf("panic recovered: %v", e.PanicValue)
}

// Recover converts a panic in the wrapped mediator into a RecoveryError.
// Scopes pushed by an Invoke inside the wrapped mediator are released by
// their own deferred guards before the panic reaches this middleware, so
// the message store is back at its entry depth when the error is returned.
func Recover() message.Middleware {
	return func(next message.MediateFunc) message.MediateFunc {
		return func(ctx context.Context, msg *message.Context) (ok bool, err error) {
			defer func() {
				if r := recover(); r != nil {
					ok = false
					err = &RecoveryError{
						PanicValue: r,
						StackTrace: string(debug.Stack()),
					}
				}
			}()
			return next(ctx, msg)
		}
	}
}
