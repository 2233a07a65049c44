package repository

import (
	"context"
	"time"

	"influence-api/pkg/logger"
)

// BatchSize is the store's maximum IN-clause cardinality; multi-id lookups
// are split into batches of at most this many ids.
const BatchSize = 100

// RetryPolicy retries transient store failures before surfacing them.
// The delay before attempt n is BaseDelay*n.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
}

// DefaultRetryPolicy matches the store-client defaults: three attempts with
// a linearly growing delay.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, BaseDelay: time.Second}

// Do runs fn, retrying on error up to the policy's attempt budget. Context
// cancellation aborts the wait and returns the context error.
func (p RetryPolicy) Do(ctx context.Context, log *logger.Logger, op string, fn func(context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		log.WithFields(map[string]interface{}{
			"op":      op,
			"attempt": attempt,
		}).WithError(err).Warn("Store query failed, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.BaseDelay * time.Duration(attempt)):
		}
	}

	return err
}

// batches splits ids into slices of at most size elements
func batches(ids []string, size int) [][]string {
	if len(ids) == 0 {
		return nil
	}
	out := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		out = append(out, ids[start:end])
	}
	return out
}
