package tmdb

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// ErrNoResetObserved reports that a wait became due before any quota-reset
// time had been recorded, leaving the limiter with nothing to wait on.
var ErrNoResetObserved = errors.New("rate limit wait due but no reset time recorded")

// Limiter is a cooperative, caller-driven throttle for the remote service's
// call quota. It owns the call counter: Await is consulted before every
// request, Record is fed the quota-reset epoch after every response. There
// is no background timer; the single pipeline goroutine simply blocks when
// the window is spent.
type Limiter struct {
	threshold int
	buffer    time.Duration
	logger    *zap.Logger

	calls      int
	resetEpoch int64
	hasReset   bool

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// LimiterOption configures a Limiter.
type LimiterOption func(*Limiter)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) LimiterOption {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// WithSleeper overrides the blocking sleep, for tests.
func WithSleeper(sleep func(context.Context, time.Duration) error) LimiterOption {
	return func(l *Limiter) {
		if sleep != nil {
			l.sleep = sleep
		}
	}
}

// NewLimiter creates a limiter that blocks after threshold calls, padding
// each wait by buffer to absorb clock skew against the service.
func NewLimiter(threshold int, buffer time.Duration, logger *zap.Logger, opts ...LimiterOption) *Limiter {
	l := &Limiter{
		threshold: threshold,
		buffer:    buffer,
		logger:    logger.Named("rate-limiter"),
		now:       time.Now,
		sleep:     sleepWithContext,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Await counts one upcoming call. When the counter exceeds the threshold it
// blocks until the recorded reset time plus the buffer has passed, then
// zeroes the counter. The wait duration is clamped at zero; it never sleeps
// a negative duration.
func (l *Limiter) Await(ctx context.Context) error {
	l.calls++
	if l.calls <= l.threshold {
		return nil
	}

	if !l.hasReset {
		return ErrNoResetObserved
	}

	wait := time.Unix(l.resetEpoch, 0).Sub(l.now()) + l.buffer
	if wait < 0 {
		wait = 0
	}

	l.logger.Debug("Rate window spent, waiting for reset",
		zap.Int("calls", l.calls),
		zap.Duration("wait", wait))

	if err := l.sleep(ctx, wait); err != nil {
		return err
	}
	l.calls = 0
	return nil
}

// Record stores the quota-reset epoch advertised by the service.
func (l *Limiter) Record(resetEpoch int64) {
	l.resetEpoch = resetEpoch
	l.hasReset = true
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
