package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/service"
)

var (
	// ErrRateLimit indicates that the remote rate limit has been exceeded.
	ErrRateLimit = errors.New("rate limit exceeded")
	// ErrMaxRetries indicates that all retry attempts have been exhausted.
	ErrMaxRetries = errors.New("max retries exceeded")
)

// RetryableError marks a failure as transient or permanent. After, when set,
// is the minimum wait the remote asked for before the next attempt.
type RetryableError struct {
	Err       error
	After     time.Duration
	Retryable bool
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// Retrier runs idempotent operations with capped exponential backoff.
type Retrier struct {
	logger *slog.Logger
	sleep  func(context.Context, time.Duration) error
	opts   service.RetryOptions
}

// NewRetrier fills unset options with defaults. A nil logger uses slog.Default.
func NewRetrier(opts service.RetryOptions, logger *slog.Logger) *Retrier {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = 100 * time.Millisecond
	}
	if opts.MaxDelay < opts.InitialDelay {
		opts.MaxDelay = max(30*time.Second, opts.InitialDelay)
	}
	if opts.Multiplier < 1 {
		opts.Multiplier = 2.0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retrier{opts: opts, logger: logger, sleep: sleepContext}
}

// Options returns the effective options.
func (r *Retrier) Options() service.RetryOptions {
	return r.opts
}

// Delay is the wait before attempt+1, ignoring any hint from the remote.
func (r *Retrier) Delay(attempt int) time.Duration {
	d := float64(r.opts.InitialDelay)
	for i := 1; i < attempt; i++ {
		d *= r.opts.Multiplier
		if d >= float64(r.opts.MaxDelay) {
			return r.opts.MaxDelay
		}
	}
	return time.Duration(d)
}

// Do calls fn until it succeeds, fails permanently, or runs out of attempts.
// Errors for which IsRetryable is false are returned unwrapped.
func (r *Retrier) Do(ctx context.Context, name string, fn func(context.Context) error) error {
	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		if attempt >= r.opts.MaxAttempts {
			return fmt.Errorf("%s: %w after %d attempts: %w", name, ErrMaxRetries, attempt, err)
		}

		delay := r.Delay(attempt)
		var hinted *RetryableError
		if errors.As(err, &hinted) && hinted.After > delay {
			delay = min(hinted.After, r.opts.MaxDelay)
		} else if errors.Is(err, ErrRateLimit) {
			delay = r.opts.MaxDelay
		}

		r.logger.Warn("Retrying remote operation",
			"operation", name,
			"attempt", attempt,
			"max_attempts", r.opts.MaxAttempts,
			"delay", delay,
			"error", err)

		if err := r.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
