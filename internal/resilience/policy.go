package resilience

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/fips-geocoder/internal/config"
)

// Policy guards calls to one upstream service with a circuit breaker wrapped
// around retries. A whole retry sequence counts as a single breaker outcome.
type Policy struct {
	service string
	backoff Backoff
	breaker *Breaker
}

// NewPolicy builds a Policy from configuration, falling back to 3 attempts,
// 200ms to 5s exponential backoff and a breaker that opens after 5 failures
// for 30s. Breaker transitions and retries are logged under service.
func NewPolicy(service string, cfg config.ResilienceConfig) *Policy {
	backoff := Backoff{
		Attempts:   positive(cfg.MaxAttempts, 3),
		Initial:    time.Duration(positive(cfg.InitialBackoffMs, 200)) * time.Millisecond,
		Max:        time.Duration(positive(cfg.MaxBackoffMs, 5000)) * time.Millisecond,
		Multiplier: cfg.Multiplier,
		Jitter:     max(cfg.JitterFraction, 0),
	}
	if backoff.Multiplier <= 0 {
		backoff.Multiplier = 2
	}

	// Only upstream faults open the circuit; a bad place ID should not.
	breaker := newBreaker(
		positive(cfg.FailureThreshold, 5),
		time.Duration(positive(cfg.ResetTimeoutSecs, 30))*time.Second,
		IsTransient,
		func(from, to State) {
			zap.L().Warn("circuit breaker state change",
				zap.String("service", service),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
		},
	)

	return &Policy{service: service, backoff: backoff, breaker: breaker}
}

// Run executes fn under p. A nil Policy runs fn once.
func Run[T any](ctx context.Context, p *Policy, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	if p == nil {
		return fn(ctx)
	}

	var zero T
	if err := p.breaker.admit(); err != nil {
		return zero, err
	}

	val, err := retry(ctx, p.backoff, func(attempt int, err error) {
		zap.L().Warn("retrying upstream call",
			zap.String("service", p.service),
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}, fn)
	p.breaker.record(err)
	return val, err
}

func positive(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
