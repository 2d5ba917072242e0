package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// Backoff is the attempt budget and delay schedule of a retry sequence.
type Backoff struct {
	Attempts   int // total calls including the first
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	Jitter     float64 // fraction of the delay, applied ±
}

// delay returns the wait before retry n (0-based).
func (b Backoff) delay(n int) time.Duration {
	d := math.Min(float64(b.Initial)*math.Pow(b.Multiplier, float64(n)), float64(b.Max))
	if b.Jitter > 0 {
		d += d * b.Jitter * (2*rand.Float64() - 1)
	}
	return time.Duration(math.Max(d, 0))
}

// retry calls fn until it succeeds, fails with a non-transient error, the
// attempts run out, or ctx is done. The last error is returned.
func retry[T any](ctx context.Context, b Backoff, onRetry func(attempt int, err error), fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	for attempt := 1; ; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		if attempt >= b.Attempts || ctx.Err() != nil || !IsTransient(err) {
			return zero, err
		}
		if onRetry != nil {
			onRetry(attempt, err)
		}

		wait := time.NewTimer(b.delay(attempt - 1))
		select {
		case <-ctx.Done():
			wait.Stop()
			return zero, err
		case <-wait.C:
		}
	}
}
