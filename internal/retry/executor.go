// Package retry runs remote operations with a bounded retry policy for
// transient RPC failures.
package retry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/trebuchet-org/treb-upgrades/internal/domain"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/config"
)

// DefaultMaxAttempts is the attempt bound used when none is configured
const DefaultMaxAttempts = 5

// Executor retries operations that fail with a transient RPC error.
// Any other error propagates on first occurrence.
type Executor struct {
	maxAttempts int
	backoff     time.Duration
	isTransient func(error) bool
	log         *slog.Logger
}

// Option configures an Executor
type Option func(*Executor)

// WithMaxAttempts sets the attempt bound
func WithMaxAttempts(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

// WithBackoff sets a fixed delay between attempts
func WithBackoff(d time.Duration) Option {
	return func(e *Executor) { e.backoff = d }
}

// WithClassifier replaces the transient error test
func WithClassifier(fn func(error) bool) Option {
	return func(e *Executor) { e.isTransient = fn }
}

// NewExecutor creates an executor with the default policy
func NewExecutor(log *slog.Logger, opts ...Option) *Executor {
	e := &Executor{
		maxAttempts: DefaultMaxAttempts,
		isTransient: domain.IsTransient,
		log:         log.With("component", "RetryingExecutor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProvideExecutor creates an Executor from runtime configuration for Wire
func ProvideExecutor(cfg *config.RuntimeConfig, log *slog.Logger) *Executor {
	return NewExecutor(log, WithMaxAttempts(cfg.MaxAttempts), WithBackoff(cfg.RetryBackoff))
}

// MaxAttempts returns the attempt bound
func (e *Executor) MaxAttempts() int {
	return e.maxAttempts
}

func (e *Executor) policy() backoff.BackOff {
	if e.backoff <= 0 {
		return &backoff.ZeroBackOff{}
	}
	return backoff.NewConstantBackOff(e.backoff)
}

// Run executes op until it succeeds, fails with a non-transient error, or
// the attempt bound is exhausted. The last transient error is returned unmodified.
func (e *Executor) Run(ctx context.Context, name string, op func(ctx context.Context) error) error {
	_, err := Do(ctx, e, name, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// Do runs a value-returning operation through e.
func Do[T any](ctx context.Context, e *Executor, name string, op func(ctx context.Context) (T, error)) (T, error) {
	var (
		attempt int
		lastErr error
	)
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}

	out, err := backoff.Retry(ctx, func() (T, error) {
		attempt++
		v, err := op(ctx)
		if err == nil {
			if attempt > 1 {
				e.log.Debug("operation succeeded after retry", "op", name, "attempt", attempt)
			}
			return v, nil
		}
		if !e.isTransient(err) {
			return v, backoff.Permanent(err)
		}
		lastErr = err
		return v, err
	},
		backoff.WithBackOff(e.policy()),
		backoff.WithMaxTries(uint(e.maxAttempts)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			e.log.Warn("transient failure", "op", name, "attempt", attempt, "max", e.maxAttempts, "next", next, "error", err)
		}),
	)
	if err == nil {
		return out, nil
	}

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return out, permanent.Unwrap()
	}
	// cancellation between attempts surfaces the failure that triggered the wait
	if lastErr != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return out, lastErr
	}
	return out, err
}
