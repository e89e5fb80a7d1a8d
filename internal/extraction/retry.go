package extraction

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/seremi5/expense-management/internal/provider"
)

// RetryPolicy bounds the extraction retry loop. Total attempts are
// MaxRetries+1: the initial attempt plus MaxRetries retries. Backoff is
// BaseDelay * 2^attempt plus uniform jitter in [0, Jitter), purely to
// avoid thundering-herd against the shared provider.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	Jitter     time.Duration
	Log        *slog.Logger

	// sleep is a test seam; nil means a context-aware timer sleep.
	sleep func(ctx context.Context, d time.Duration) error
}

func (p RetryPolicy) backoff(attempt int) time.Duration {
	d := p.BaseDelay << uint(attempt)
	if p.Jitter > 0 {
		d += time.Duration(rand.Int63n(int64(p.Jitter)))
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Retry runs op until it succeeds, fails terminally, or attempts are
// exhausted. On any terminal outcome the last encountered error is the
// one surfaced, never an aggregate.
func Retry[T any](ctx context.Context, p RetryPolicy, op func(context.Context) (T, error)) (T, error) {
	log := p.Log
	if log == nil {
		log = slog.Default()
	}
	doSleep := p.sleep
	if doSleep == nil {
		doSleep = sleepCtx
	}

	var zero T
	for attempt := 0; ; attempt++ {
		out, err := op(ctx)
		if err == nil {
			return out, nil
		}
		if provider.IsTerminal(err) {
			log.Warn("extraction.retry.terminal", "attempt", attempt+1, "error", err)
			return zero, err
		}
		if attempt == p.MaxRetries {
			log.Warn("extraction.retry.exhausted", "attempts", attempt+1, "error", err)
			return zero, err
		}
		delay := p.backoff(attempt)
		log.Info("extraction.retry.backoff",
			"attempt", attempt+1,
			"max_attempts", p.MaxRetries+1,
			"delay_ms", delay.Milliseconds(),
			"error", err,
		)
		if sleepErr := doSleep(ctx, delay); sleepErr != nil {
			// Cancelled mid-backoff; propagate the cancellation.
			return zero, sleepErr
		}
	}
}
