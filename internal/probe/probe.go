// Package probe validates connectivity and credentials against the
// proxy's control API.
package probe

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"time"
)

type Outcome int

const (
	Ok Outcome = iota
	AuthFailed
	ConnectFailed
)

func (o Outcome) String() string {
	switch o {
	case Ok:
		return "ok"
	case AuthFailed:
		return "auth_failed"
	case ConnectFailed:
		return "connect_failed"
	default:
		return "unknown"
	}
}

type Result struct {
	Outcome Outcome
	Status  int
}

// unauthorizedBody is the payload some service builds return with HTTP
// 200 instead of a proper 401.
const unauthorizedBody = `{"message":"Unauthorized"}`

// maxBodyBytes bounds how much of the response body is spooled for
// classification.
const maxBodyBytes = 64 * 1024

// Check performs one authenticated GET against the API base and
// classifies the result. The response body is spooled to a scratch file
// for inspection and removed before returning; it never reaches later
// stages. The Authorization header is attached iff token is non-empty.
func Check(ctx context.Context, client *http.Client, baseURL, token, scratchDir string, timeout time.Duration) Result {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return Result{Outcome: ConnectFailed}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return Result{Outcome: ConnectFailed}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := spoolBody(resp.Body, scratchDir)
	if err != nil {
		body = nil
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return Result{Outcome: AuthFailed, Status: resp.StatusCode}
	case bytes.Equal(bytes.TrimSpace(body), []byte(unauthorizedBody)):
		return Result{Outcome: AuthFailed, Status: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		return Result{Outcome: ConnectFailed, Status: resp.StatusCode}
	default:
		return Result{Outcome: Ok, Status: resp.StatusCode}
	}
}

// CheckStatus is the cheap poll-loop variant: status code only, body
// discarded.
func CheckStatus(ctx context.Context, client *http.Client, baseURL, token string, timeout time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return 0, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}

// spoolBody writes the body prefix to a scratch file, reads it back, and
// removes the file again.
func spoolBody(r io.Reader, scratchDir string) ([]byte, error) {
	f, err := os.CreateTemp(scratchDir, "clashdiag-probe-*.body")
	if err != nil {
		return nil, err
	}
	name := f.Name()
	defer func() { _ = os.Remove(name) }()

	if _, err := io.Copy(f, io.LimitReader(r, maxBodyBytes)); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return os.ReadFile(name)
}
