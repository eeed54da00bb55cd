package query

import (
	"context"
	"time"
)

// Producer loads the value for one key. It may be invoked more than once when
// retries are configured.
type Producer func(ctx context.Context) (any, error)

// Options control one observation of a key.
type Options struct {
	// StaleTime is how long a successful value is served without revalidation.
	StaleTime time.Duration
	// Retry is the number of extra producer attempts after a failure.
	Retry int
	// RetryDelay pauses between attempts. Zero retries immediately.
	RetryDelay time.Duration
	// Enabled gates the query; a disabled query never calls its producer.
	Enabled bool
}

// DefaultOptions is one immediate retry with the given stale time.
func DefaultOptions(staleTime time.Duration) Options {
	return Options{
		StaleTime: staleTime,
		Retry:     1,
		Enabled:   true,
	}
}

func (o Options) attempts() int {
	if o.Retry < 0 {
		return 1
	}
	return o.Retry + 1
}
