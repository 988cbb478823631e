package vendorscript

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeScript(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "debug.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestRun_ScriptProducesOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "debug.log")
	script := writeScript(t, dir, "echo report > "+out+"\n")

	if err := Run(context.Background(), script, out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("output missing: %v", err)
	}
}

func TestRun_StaleOutputRemovedFirst(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "debug.log")
	if err := os.WriteFile(out, []byte("stale"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	// The script writes nothing, so a surviving file would be the stale
	// copy from a previous run.
	script := writeScript(t, dir, "true\n")

	err := Run(context.Background(), script, out)
	if err == nil {
		t.Fatalf("expected missing-output error")
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatalf("stale output not removed: %v", statErr)
	}
}

func TestRun_MissingScript(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "debug.log")
	if err := Run(context.Background(), filepath.Join(dir, "missing.sh"), out); err == nil {
		t.Fatalf("expected spawn error")
	}
}

func TestRun_ScriptFailureSurfaces(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "debug.log")
	script := writeScript(t, dir, "exit 1\n")

	if err := Run(context.Background(), script, out); err == nil {
		t.Fatalf("expected error")
	}
}
