package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "restart.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestRestart_Success(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "restarted")
	script := writeScript(t, "touch "+marker+"\n")

	res, err := Restart(context.Background(), []string{script})
	if err != nil {
		t.Fatalf("Restart: %v", err)
	}
	if res.ExitCode != 0 {
		t.Fatalf("exit code: %d", res.ExitCode)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Fatalf("restart command did not run: %v", err)
	}
}

func TestRestart_NonzeroExitIsNotAnError(t *testing.T) {
	script := writeScript(t, "exit 3\n")

	res, err := Restart(context.Background(), []string{script})
	if err != nil {
		t.Fatalf("Restart: %v", err)
	}
	if res.ExitCode != 3 {
		t.Fatalf("exit code: %d", res.ExitCode)
	}
}

func TestRestart_SpawnFailure(t *testing.T) {
	if _, err := Restart(context.Background(), []string{filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Fatalf("expected spawn error")
	}
}

func TestRestart_EmptyCommand(t *testing.T) {
	if _, err := Restart(context.Background(), nil); err == nil {
		t.Fatalf("expected error for empty argv")
	}
}
