// Package poll waits for the restarted service to come back.
package poll

import (
	"context"
	"net/http"
	"time"
)

type State int

const (
	Waiting State = iota
	Ready
)

type Opts struct {
	Interval time.Duration
	Timeout  time.Duration

	// Probe returns the HTTP status of one availability check.
	Probe func(ctx context.Context) (int, error)
}

// Wait re-runs the probe on each interval tick, starting immediately,
// until it reports 200 or the timeout elapses. Returns Ready on success
// and Waiting when it gave up; giving up is not an error (the caller
// degrades to an empty capture instead of failing the run).
func Wait(ctx context.Context, opts Opts) State {
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}

	deadline := time.NewTimer(opts.Timeout)
	defer deadline.Stop()
	tick := time.NewTicker(opts.Interval)
	defer tick.Stop()

	for {
		status, err := opts.Probe(ctx)
		if err == nil && status == http.StatusOK {
			return Ready
		}

		select {
		case <-ctx.Done():
			return Waiting
		case <-deadline.C:
			return Waiting
		case <-tick.C:
		}
	}
}
