// Package trace appends per-stage events to a JSONL file in the scratch
// directory. The trace is a diagnostic artifact for the operator, not an
// interface: writing it is best-effort and never fails a run.
package trace

import (
	"path/filepath"
	"time"

	"github.com/routerlab/clashdiag/internal/store"
)

const (
	SchemaV1 = 1
	FileName = "clashdiag.trace.jsonl"
)

type Event struct {
	V          int    `json:"v"`
	TS         string `json:"ts"`
	Stage      string `json:"stage"`
	OK         bool   `json:"ok"`
	Code       string `json:"code,omitempty"`
	DurationMs int64  `json:"durationMs"`
	Detail     string `json:"detail,omitempty"`
}

// Writer appends stage events under one scratch directory.
type Writer struct {
	path string
}

func NewWriter(scratchDir string) *Writer {
	return &Writer{path: filepath.Join(scratchDir, FileName)}
}

func (w *Writer) Path() string { return w.path }

func (w *Writer) Stage(now time.Time, stage string, ok bool, code string, duration time.Duration, detail string) {
	if w == nil {
		return
	}
	ev := Event{
		V:          SchemaV1,
		TS:         now.UTC().Format(time.RFC3339Nano),
		Stage:      stage,
		OK:         ok,
		Code:       code,
		DurationMs: duration.Milliseconds(),
		Detail:     detail,
	}
	_ = store.AppendJSONL(w.path, ev)
}
