package extract

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 300 * time.Millisecond
	DefaultMaxDelay    = 5 * time.Second
)

// ErrExhausted is returned by RetryLoop when every attempt asked for a retry.
var ErrExhausted = errors.New("attempt budget exhausted")

// Policy bounds the attempt loop.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultPolicy returns three attempts with 300ms doubling backoff.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, BaseDelay: DefaultBaseDelay, MaxDelay: DefaultMaxDelay}
}

func (p Policy) attempts() int {
	if p.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return p.MaxAttempts
}

// Delay returns the wait after the given 1-based attempt.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	b := p.backOff()
	var d time.Duration
	for i := 0; i < attempt; i++ {
		d = b.NextBackOff()
	}
	return d
}

// backOff builds the deterministic doubling schedule for p.
func (p Policy) backOff() backoff.BackOff {
	if p.BaseDelay <= 0 {
		return &backoff.ZeroBackOff{}
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = p.MaxDelay
	if b.MaxInterval <= 0 {
		b.MaxInterval = time.Duration(math.MaxInt64)
	}
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// errRetryAttempt signals backoff.Retry that the attempt asked for another try.
var errRetryAttempt = errors.New("attempt requested retry")

// RetryLoop calls fn sequentially until it succeeds, fails fatally, the
// context ends, or the policy's attempt budget is spent. It returns every
// outcome observed. The error is nil on success, the outcome's error on a
// fatal verdict, ctx.Err() on cancellation and ErrExhausted otherwise.
func RetryLoop(ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) Outcome) ([]Outcome, error) {
	max := p.attempts()
	history := make([]Outcome, 0, max)
	schedule := backoff.WithContext(backoff.WithMaxRetries(p.backOff(), uint64(max-1)), ctx)

	err := backoff.Retry(func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		out := fn(ctx, len(history)+1)
		history = append(history, out)
		switch out.Verdict {
		case Success:
			return nil
		case Fatal:
			if out.Err == nil {
				return backoff.Permanent(errors.New("fatal attempt without error"))
			}
			return backoff.Permanent(out.Err)
		}
		return errRetryAttempt
	}, schedule)

	if errors.Is(err, errRetryAttempt) {
		return history, ErrExhausted
	}
	return history, err
}
