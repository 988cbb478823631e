// Package capture performs the time-bounded streaming read of the log
// endpoint.
package capture

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"time"
)

// Stream holds one GET to the log endpoint open for at most window,
// writing the body to dest incrementally as it arrives. Hitting the
// deadline is the normal end of a capture, not a failure; the capture is
// time-bounded, not count-bounded. On return dest exists, possibly
// empty. When maxBytes > 0 the capture also stops after that many bytes.
func Stream(ctx context.Context, client *http.Client, url, token, dest string, window time.Duration, maxBytes int64) (int64, error) {
	f, err := os.Create(dest)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	ctx, cancel := context.WithTimeout(ctx, window)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		if deadlineHit(ctx, err) {
			return 0, nil
		}
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	var body io.Reader = resp.Body
	if maxBytes > 0 {
		body = io.LimitReader(body, maxBytes)
	}

	n, err := io.Copy(f, body)
	if err != nil && !deadlineHit(ctx, err) {
		return n, err
	}
	return n, nil
}

// deadlineHit reports whether err is the capture window expiring rather
// than a genuine transport failure. The deadline surfaces differently
// depending on whether it fires before the response or mid-body.
func deadlineHit(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	return ctx.Err() != nil
}
