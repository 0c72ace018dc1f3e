package common

import (
	"context"
	"math/rand"
	"time"
)

// RetryOptions tunes WithRetry. Zero values pick the defaults.
type RetryOptions struct {
	Retries  int
	MinDelay time.Duration
	Factor   float64
	MaxDelay time.Duration
	// ShouldRetry decides per error; nil retries everything.
	ShouldRetry func(error) bool
}

func (o RetryOptions) withDefaults() RetryOptions {
	if o.Retries == 0 {
		o.Retries = 3
	}
	if o.MinDelay == 0 {
		o.MinDelay = 200 * time.Millisecond
	}
	if o.Factor == 0 {
		o.Factor = 2
	}
	if o.MaxDelay == 0 {
		o.MaxDelay = 3 * time.Second
	}
	return o
}

// WithRetry runs fn with exponential backoff and jitter. The context
// cancels both the waits and further attempts.
func WithRetry(ctx context.Context, opts RetryOptions, fn func() error) error {
	o := opts.withDefaults()
	attempt := 0
	for {
		err := fn()
		if err == nil {
			return nil
		}
		attempt++
		if attempt > o.Retries || (o.ShouldRetry != nil && !o.ShouldRetry(err)) {
			return err
		}

		delay := o.MinDelay
		for i := 0; i < attempt; i++ {
			delay = time.Duration(float64(delay) * o.Factor)
		}
		delay += time.Duration(rand.Int63n(int64(o.MinDelay)))
		if delay > o.MaxDelay {
			delay = o.MaxDelay
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}
