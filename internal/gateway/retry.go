// Package gateway supervises the long-lived chat-platform connection,
// restarting it with escalating delays when it drops.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"
)

// Runner is one attempt at the platform connection. It blocks until the
// connection ends and returns why.
type Runner func(ctx context.Context) error

// ErrGiveUp is returned once the allowed reconnect attempts are exhausted,
// signalling the process supervisor to restart from scratch.
var ErrGiveUp = errors.New("gateway: retry attempts exhausted")

// backoffSchedule holds the fixed waits between reconnect attempts. The last
// entry repeats for any further attempts.
var backoffSchedule = []time.Duration{
	20 * time.Second,
	60 * time.Second,
	120 * time.Second,
	300 * time.Second,
}

// DefaultMaxAttempts bounds consecutive failed connection attempts.
const DefaultMaxAttempts = 10

// Supervise runs the connection, reconnecting after failures with the fixed
// escalating schedule plus a little jitter. A run that stays up for at least
// a minute resets the failure counter. Context cancellation stops the loop
// cleanly.
func Supervise(ctx context.Context, run Runner, maxAttempts int) error {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	failures := 0
	for {
		started := time.Now()
		err := run(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			return nil
		}

		if time.Since(started) > time.Minute {
			failures = 0
		}
		failures++
		if failures >= maxAttempts {
			return fmt.Errorf("%w after %d attempts: %v", ErrGiveUp, failures, err)
		}

		wait := backoffFor(failures)
		log.Printf("Gateway connection lost (attempt %d/%d), reconnecting in %s: %v", failures, maxAttempts, wait, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// backoffFor returns the scheduled wait for the nth consecutive failure,
// jittered by up to 10% so simultaneous restarts spread out.
func backoffFor(failures int) time.Duration {
	idx := failures - 1
	if idx >= len(backoffSchedule) {
		idx = len(backoffSchedule) - 1
	}
	base := backoffSchedule[idx]
	jitter := time.Duration(rand.Int63n(int64(base) / 10))
	return base + jitter
}
