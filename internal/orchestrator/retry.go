package orchestrator

import (
	"context"
	"math/rand"
	"time"

	"github.com/farxc/projetus/internal/pipelineerr"
)

// retryBackoffs is §4.11's fixed schedule: up to 3 retries after the first
// attempt, sleeping 2s, 4s, then 8s before each retry. Validation and schema errors are never retried — only
// pipelineerr.KindTransient is (timeouts, connection resets, lock
// contention on external resources).
var retryBackoffs = []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}

// withRetry runs fn up to len(retryBackoffs)+1 times, sleeping the
// configured backoff plus up to 25% jitter between attempts, stopping as
// soon as fn succeeds or returns a non-Transient error. Sleeps respect
// context cancellation.
func withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || !pipelineerr.Retryable(err) {
			return err
		}
		if attempt >= len(retryBackoffs) {
			return err
		}
		delay := jitter(retryBackoffs[attempt])
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// jitter adds up to 25% random extension to a base backoff duration, so
// concurrent retrying callers (across unrelated processes hitting the same
// external resource) don't all wake up in lockstep.
func jitter(base time.Duration) time.Duration {
	extra := time.Duration(rand.Int63n(int64(base) / 4))
	return base + extra
}
