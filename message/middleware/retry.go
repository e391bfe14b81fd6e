package middleware

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/fxsml/mediate/message"
)

var (
	// ErrRetryMaxAttempts is returned when all retry attempts fail.
	ErrRetryMaxAttempts = errors.New("retry: max attempts reached")

	// ErrRetryTimeout is returned when the overall retry time runs out.
	ErrRetryTimeout = errors.New("retry: timeout reached")
)

// BackoffFunc returns the wait duration before retry attempt (1 for the
// first retry).
type BackoffFunc func(attempt int) time.Duration

// ConstantBackoff waits delay between attempts. Jitter 0.2 varies the wait
// by ±20%.
func ConstantBackoff(delay time.Duration, jitter float64) BackoffFunc {
	applyJitter := newApplyJitterFunc(jitter)
	return func(int) time.Duration {
		return applyJitter(delay)
	}
}

// ExponentialBackoff waits initialDelay * factor^(attempt-1), capped at
// maxDelay when maxDelay > 0. Jitter is applied after capping.
func ExponentialBackoff(initialDelay time.Duration, factor float64, maxDelay time.Duration, jitter float64) BackoffFunc {
	applyJitter := newApplyJitterFunc(jitter)
	return func(attempt int) time.Duration {
		backoff := time.Duration(float64(initialDelay) * math.Pow(factor, float64(attempt-1)))
		if maxDelay > 0 && backoff > maxDelay {
			backoff = maxDelay
		}
		return applyJitter(backoff)
	}
}

func newApplyJitterFunc(jitter float64) func(time.Duration) time.Duration {
	if jitter <= 0 {
		return func(d time.Duration) time.Duration { return d }
	}
	jitter = min(jitter, 1)
	return func(d time.Duration) time.Duration {
		delta := (rand.Float64()*2 - 1) * jitter * float64(d)
		return time.Duration(float64(d) + delta)
	}
}

// ShouldRetryFunc decides whether an error triggers another attempt.
type ShouldRetryFunc func(error) bool

// ShouldRetry retries only errors matching one of errs. With no errs every
// error is retried.
func ShouldRetry(errs ...error) ShouldRetryFunc {
	return func(err error) bool {
		if len(errs) == 0 {
			return true
		}
		for _, e := range errs {
			if errors.Is(err, e) {
				return true
			}
		}
		return false
	}
}

// ShouldNotRetry retries every error except those matching errs.
func ShouldNotRetry(errs ...error) ShouldRetryFunc {
	return func(err error) bool {
		for _, e := range errs {
			if errors.Is(err, e) {
				return false
			}
		}
		return true
	}
}

// RetryConfig configures Retry.
type RetryConfig struct {
	// ShouldRetry selects retryable errors. Default retries all errors.
	ShouldRetry ShouldRetryFunc

	// Backoff produces the wait between attempts.
	// Default is 1 second constant backoff with ±20% jitter.
	Backoff BackoffFunc

	// MaxAttempts limits attempts including the first one.
	// Default is 3. Negative values allow unlimited attempts.
	MaxAttempts int

	// Timeout limits all attempts combined. Default is 1 minute.
	Timeout time.Duration
}

func (c RetryConfig) parse() RetryConfig {
	if c.ShouldRetry == nil {
		c.ShouldRetry = ShouldRetry()
	}
	if c.Backoff == nil {
		c.Backoff = ConstantBackoff(time.Second, 0.2)
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	} else if c.MaxAttempts < 0 {
		c.MaxAttempts = 0
	}
	if c.Timeout <= 0 {
		c.Timeout = time.Minute
	}
	return c
}

// Retry runs the wrapped mediator again when it fails with a retryable
// error. A false result without error is final. The mediator runs again on
// the same message, so it must be idempotent, as a publisher is.
func Retry(cfg RetryConfig) message.Middleware {
	cfg = cfg.parse()
	return func(next message.MediateFunc) message.MediateFunc {
		return func(ctx context.Context, msg *message.Context) (bool, error) {
			ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
			defer cancel()

			var causes []error
			for attempt := 1; ; attempt++ {
				ok, err := next(ctx, msg)
				if err == nil {
					return ok, nil
				}
				causes = append(causes, err)
				if !cfg.ShouldRetry(err) {
					return false, err
				}
				if cfg.MaxAttempts > 0 && attempt >= cfg.MaxAttempts {
					return false, fmt.Errorf("%w (%d): %w", ErrRetryMaxAttempts, attempt, errors.Join(causes...))
				}

				select {
				case <-ctx.Done():
					return false, fmt.Errorf("%w: %w", ErrRetryTimeout, errors.Join(append(causes, ctx.Err())...))
				case <-time.After(cfg.Backoff(attempt)):
				}
			}
		}
	}
}
