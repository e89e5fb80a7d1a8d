package extraction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seremi5/expense-management/internal/provider"
)

func noSleep(recorded *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*recorded = append(*recorded, d)
		return nil
	}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	var sleeps []time.Duration
	policy := RetryPolicy{MaxRetries: 3, BaseDelay: 10 * time.Millisecond, sleep: noSleep(&sleeps)}

	attempts := 0
	out, err := Retry(context.Background(), policy, func(context.Context) (string, error) {
		attempts++
		if attempts <= 3 {
			return "", &provider.Error{Op: "extract", Retryable: true, Err: errors.New("rate limited")}
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 4, attempts)
	assert.Len(t, sleeps, 3, "one backoff sleep per retry")
}

func TestRetryBackoffDoublesPerAttempt(t *testing.T) {
	var sleeps []time.Duration
	policy := RetryPolicy{MaxRetries: 2, BaseDelay: 100 * time.Millisecond, sleep: noSleep(&sleeps)}

	_, err := Retry(context.Background(), policy, func(context.Context) (int, error) {
		return 0, errors.New("transient")
	})

	require.Error(t, err)
	require.Len(t, sleeps, 2)
	assert.Equal(t, 100*time.Millisecond, sleeps[0])
	assert.Equal(t, 200*time.Millisecond, sleeps[1])
}

func TestRetryStopsImmediatelyOnTerminalError(t *testing.T) {
	var sleeps []time.Duration
	policy := RetryPolicy{MaxRetries: 5, BaseDelay: time.Millisecond, sleep: noSleep(&sleeps)}

	terminal := &provider.Error{Op: "extract", StatusCode: 400, Retryable: false, Err: errors.New("bad request")}
	attempts := 0
	_, err := Retry(context.Background(), policy, func(context.Context) (int, error) {
		attempts++
		return 0, terminal
	})

	assert.Equal(t, 1, attempts)
	assert.Empty(t, sleeps)
	assert.ErrorIs(t, err, terminal.Err)
}

func TestRetrySurfacesLastErrorWhenExhausted(t *testing.T) {
	var sleeps []time.Duration
	policy := RetryPolicy{MaxRetries: 2, BaseDelay: time.Millisecond, sleep: noSleep(&sleeps)}

	attempts := 0
	_, err := Retry(context.Background(), policy, func(context.Context) (int, error) {
		attempts++
		return 0, &provider.Error{Op: "extract", Retryable: true,
			Err: errors.New("attempt " + string(rune('0'+attempts)))}
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts, "initial attempt plus MaxRetries retries")
	assert.Contains(t, err.Error(), "attempt 3", "last error is surfaced, not an aggregate")
}

func TestRetryAbortsWhenCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := RetryPolicy{
		MaxRetries: 5,
		BaseDelay:  time.Millisecond,
		sleep: func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		},
	}

	attempts := 0
	_, err := Retry(ctx, policy, func(context.Context) (int, error) {
		attempts++
		return 0, errors.New("transient")
	})

	assert.Equal(t, 1, attempts)
	assert.ErrorIs(t, err, context.Canceled)
}
