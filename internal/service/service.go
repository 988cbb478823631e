// Package service triggers a restart of the proxy service through its
// init command.
package service

import (
	"context"
	"errors"
	"os/exec"
	"time"
)

type Result struct {
	ExitCode   int
	DurationMs int64
}

// Restart invokes the restart command and waits for it to finish. A
// nonzero exit from the command is reported in Result, not as an error;
// the availability poller is the real gate on whether the restart took.
// An error is returned only when the command cannot be spawned at all.
func Restart(ctx context.Context, argv []string) (Result, error) {
	if len(argv) == 0 {
		return Result{}, errors.New("missing restart command")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	start := time.Now()
	err := cmd.Run()
	res := Result{DurationMs: time.Since(start).Milliseconds()}
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			res.ExitCode = ee.ExitCode()
			return res, nil
		}
		return Result{}, err
	}
	return res, nil
}
