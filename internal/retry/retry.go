// Package retry runs an operation a bounded number of times.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Options controls how often and how far apart attempts are made.
type Options struct {
	// MaxCount is the total number of attempts, including the first one.
	MaxCount    uint
	Interval    time.Duration
	MaxInterval time.Duration
	// Exponent grows the interval between attempts. A value of 1 keeps it fixed.
	Exponent float64
}

// CreateOptions returns the defaults used for outgoing calls: 3 attempts, 1s apart.
func CreateOptions() Options {
	return Options{
		MaxCount:    3,
		Interval:    1 * time.Second,
		MaxInterval: 30 * time.Second,
		Exponent:    1.0,
	}
}

func (o Options) WithMaxCount(count uint) Options {
	o.MaxCount = count
	return o
}

func (o Options) WithInterval(interval time.Duration) Options {
	o.Interval = interval
	if o.MaxInterval < interval {
		o.MaxInterval = interval
	}
	return o
}

func (o Options) WithExponent(exponent float64) Options {
	o.Exponent = exponent
	return o
}

// Handler is the operation to retry.
type Handler[R any] func() (R, error)

// Permanent wraps err so that Do stops retrying and returns err right away.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do calls handler until it succeeds, returns a Permanent error or options.MaxCount attempts have been made.
func Do[R any](ctx context.Context, handler Handler[R], options Options) (R, error) {
	operation := func() (R, error) {
		return handler()
	}

	var b backoff.BackOff = backoff.NewConstantBackOff(options.Interval)
	if options.Exponent > 1 {
		b = &backoff.ExponentialBackOff{
			InitialInterval: options.Interval,
			Multiplier:      options.Exponent,
			MaxInterval:     options.MaxInterval,
		}
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(options.MaxCount),
		// the attempt budget is the only bound
		backoff.WithMaxElapsedTime(0),
	)
}
