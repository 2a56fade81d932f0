package pipeline

import (
	"context"
	"math/rand"
	"time"

	"shopassist/internal/logger"
)

// jitterFraction spreads retry delays by ±10% so synchronized clients
// do not retry in lockstep.
const jitterFraction = 0.1

// Backoff produces exponentially growing, jittered retry delays for one
// operation. It is single-use state; call Reset to reuse it.
type Backoff struct {
	base        time.Duration
	max         time.Duration
	factor      float64
	maxAttempts int
	rng         *rand.Rand
	attempt     int
}

// NewBackoff builds a backoff schedule. A nil rng falls back to a
// time-seeded source.
func NewBackoff(base, max time.Duration, factor float64, maxAttempts int, rng *rand.Rand) *Backoff {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Backoff{
		base:        base,
		max:         max,
		factor:      factor,
		maxAttempts: maxAttempts,
		rng:         rng,
	}
}

// NextDelay returns the delay before the next attempt, or false when the
// attempt budget is spent. With maxAttempts total attempts there are
// maxAttempts-1 delays.
func (b *Backoff) NextDelay() (time.Duration, bool) {
	if b.attempt >= b.maxAttempts-1 {
		return 0, false
	}

	delay := float64(b.base)
	for i := 0; i < b.attempt; i++ {
		delay *= b.factor
	}
	if delay > float64(b.max) {
		delay = float64(b.max)
	}

	// Jitter in [-10%, +10%].
	jitter := 1 + jitterFraction*(2*b.rng.Float64()-1)
	b.attempt++
	return time.Duration(delay * jitter), true
}

// Reset returns the schedule to its first attempt.
func (b *Backoff) Reset() {
	b.attempt = 0
}

// Execute runs fn, retrying on error per the schedule. A non-nil
// shouldRetry can veto retrying a given error; the last error is
// returned when attempts are exhausted, the veto fires, or ctx ends.
func (b *Backoff) Execute(ctx context.Context, fn func(context.Context) error, shouldRetry func(error) bool) error {
	b.Reset()

	var err error
	for {
		if err = fn(ctx); err == nil {
			return nil
		}
		if shouldRetry != nil && !shouldRetry(err) {
			return err
		}

		delay, ok := b.NextDelay()
		if !ok {
			return err
		}

		logger.Debug().
			Dur("delay", delay).
			Int("attempt", b.attempt).
			Err(err).
			Msg("Retrying after backoff")

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}
