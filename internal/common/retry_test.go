package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingRetrier skips real sleeps and records the requested delays.
func recordingRetrier(opts service.RetryOptions) (*Retrier, *[]time.Duration) {
	r := NewRetrier(opts, nil)
	var waits []time.Duration
	r.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return ctx.Err()
	}
	return r, &waits
}

func fastRetry(attempts int) service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     4 * time.Millisecond,
		Multiplier:   2,
	}
}

func TestNewRetrier_Defaults(t *testing.T) {
	opts := NewRetrier(service.RetryOptions{}, nil).Options()
	assert.Equal(t, 3, opts.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, opts.InitialDelay)
	assert.Equal(t, 30*time.Second, opts.MaxDelay)
	assert.InDelta(t, 2.0, opts.Multiplier, 0.0001)
}

func TestRetrier_Delay(t *testing.T) {
	r := NewRetrier(fastRetry(5), nil)
	assert.Equal(t, time.Millisecond, r.Delay(1))
	assert.Equal(t, 2*time.Millisecond, r.Delay(2))
	assert.Equal(t, 4*time.Millisecond, r.Delay(3))
	assert.Equal(t, 4*time.Millisecond, r.Delay(10))
}

func TestRetrier_SucceedsAfterTransientFailures(t *testing.T) {
	r, waits := recordingRetrier(fastRetry(5))
	calls := 0
	err := r.Do(context.Background(), "fetch wallets", func(context.Context) error {
		calls++
		if calls < 3 {
			return &RemoteError{Operation: "fetch wallets", StatusCode: 502}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, *waits)
}

func TestRetrier_StopsOnPermanentError(t *testing.T) {
	r, waits := recordingRetrier(fastRetry(5))
	calls := 0
	err := r.Do(context.Background(), "fetch wallets", func(context.Context) error {
		calls++
		return &RemoteError{Operation: "fetch wallets", StatusCode: 404}
	})

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *waits)
}

func TestRetrier_ExhaustsAttempts(t *testing.T) {
	r, _ := recordingRetrier(fastRetry(3))
	calls := 0
	reset := errors.New("connection reset")
	err := r.Do(context.Background(), "fetch wallets", func(context.Context) error {
		calls++
		return &RetryableError{Err: reset, Retryable: true}
	})

	assert.ErrorIs(t, err, ErrMaxRetries)
	assert.ErrorIs(t, err, reset)
	assert.Contains(t, err.Error(), "fetch wallets")
	assert.Equal(t, 3, calls)
}

func TestRetrier_RemoteWaitHint(t *testing.T) {
	r, waits := recordingRetrier(fastRetry(3))
	calls := 0
	err := r.Do(context.Background(), "fetch wallets", func(context.Context) error {
		calls++
		if calls == 1 {
			return &RetryableError{Err: ErrRateLimit, After: 3 * time.Millisecond, Retryable: true}
		}
		if calls == 2 {
			return &RetryableError{Err: ErrRateLimit, After: time.Hour, Retryable: true}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []time.Duration{3 * time.Millisecond, 4 * time.Millisecond}, *waits)
}

func TestRetrier_HonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRetrier(service.RetryOptions{MaxAttempts: 5, InitialDelay: time.Second}, nil)
	calls := 0
	err := r.Do(ctx, "fetch wallets", func(context.Context) error {
		calls++
		cancel()
		return &RemoteError{StatusCode: 500}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
