package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Limiter defines the interface for request pacing
type Limiter interface {
	// Wait blocks until the next request may be issued
	Wait(ctx context.Context) error
}

// FixedDelay sleeps for a constant duration before every request.
// Unlike a token bucket it never lets a burst through: the first
// request waits just as long as the hundredth.
type FixedDelay struct {
	delay time.Duration
}

// NewFixedDelay creates a fixed delay limiter
func NewFixedDelay(delay time.Duration) (*FixedDelay, error) {
	if delay < 0 {
		return nil, fmt.Errorf("delay cannot be negative: %s", delay)
	}
	return &FixedDelay{delay: delay}, nil
}

// Delay returns the configured delay
func (f *FixedDelay) Delay() time.Duration {
	return f.delay
}

// Wait sleeps for the configured delay or until ctx is done
func (f *FixedDelay) Wait(ctx context.Context) error {
	if f.delay == 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(f.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PerMinute caps throughput at n requests per minute
type PerMinute struct {
	limiter *rate.Limiter
}

// NewPerMinute creates a limiter allowing n requests per minute with no burst
func NewPerMinute(n int) *PerMinute {
	return &PerMinute{
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1),
	}
}

// Wait blocks until the rate cap allows another request
func (p *PerMinute) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// Chain waits on every limiter in order
type Chain []Limiter

// Wait waits on each limiter in turn and stops at the first error
func (c Chain) Wait(ctx context.Context) error {
	for _, l := range c {
		if l == nil {
			continue
		}
		if err := l.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// New builds the limiter used by the crawler: a fixed delay before each
// request, optionally followed by a per-minute cap when rpm > 0.
func New(delay time.Duration, rpm int) (Limiter, error) {
	fixed, err := NewFixedDelay(delay)
	if err != nil {
		return nil, err
	}
	if rpm <= 0 {
		return fixed, nil
	}
	return Chain{fixed, NewPerMinute(rpm)}, nil
}
