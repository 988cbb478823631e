package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
)

func TestCheck_AttachesAuthHeaderOnlyWithToken(t *testing.T) {
	cases := []struct {
		name       string
		token      string
		wantHeader string
	}{
		{name: "with_token", token: "abc", wantHeader: "Bearer abc"},
		{name: "empty_token", token: "", wantHeader: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var gotHeader string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotHeader = r.Header.Get("Authorization")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(`{"ok":true}`))
			}))
			defer srv.Close()

			res := Check(context.Background(), srv.Client(), srv.URL, tc.token, t.TempDir(), time.Second)
			if res.Outcome != Ok {
				t.Fatalf("outcome: %v", res.Outcome)
			}
			if gotHeader != tc.wantHeader {
				t.Fatalf("Authorization header: got %q, want %q", gotHeader, tc.wantHeader)
			}
		})
	}
}

func TestCheck_Classification(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   Outcome
	}{
		{name: "ok", status: 200, body: `{"ok":true}`, want: Ok},
		{name: "status_401", status: 401, body: "", want: AuthFailed},
		{name: "unauthorized_body_at_200", status: 200, body: `{"message":"Unauthorized"}`, want: AuthFailed},
		{name: "unauthorized_body_with_newline", status: 200, body: "{\"message\":\"Unauthorized\"}\n", want: AuthFailed},
		{name: "server_error", status: 500, body: "boom", want: ConnectFailed},
		{name: "not_found", status: 404, body: "", want: ConnectFailed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			res := Check(context.Background(), srv.Client(), srv.URL, "", t.TempDir(), time.Second)
			if res.Outcome != tc.want {
				t.Fatalf("outcome: got %v, want %v (status %d)", res.Outcome, tc.want, res.Status)
			}
			if res.Status != tc.status {
				t.Fatalf("status: got %d, want %d", res.Status, tc.status)
			}
		})
	}
}

func TestCheck_UnreachableIsConnectFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	res := Check(context.Background(), &http.Client{}, srv.URL, "", t.TempDir(), time.Second)
	if res.Outcome != ConnectFailed {
		t.Fatalf("outcome: %v", res.Outcome)
	}
}

func TestCheck_ScratchBodyRemoved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	scratch := t.TempDir()
	Check(context.Background(), srv.Client(), srv.URL, "", scratch, time.Second)

	entries, err := os.ReadDir(scratch)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "clashdiag-probe-") {
			t.Fatalf("scratch body leaked: %s", e.Name())
		}
	}
}

func TestCheckStatus_ReportsStatusOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	status, err := CheckStatus(context.Background(), srv.Client(), srv.URL, "tok", time.Second)
	if err != nil {
		t.Fatalf("CheckStatus: %v", err)
	}
	if status != http.StatusOK {
		t.Fatalf("status: %d", status)
	}

	status, err = CheckStatus(context.Background(), srv.Client(), srv.URL, "", time.Second)
	if err != nil {
		t.Fatalf("CheckStatus: %v", err)
	}
	if status != http.StatusUnauthorized {
		t.Fatalf("status: %d", status)
	}
}
