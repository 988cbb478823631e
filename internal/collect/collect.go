// Package collect runs the diagnostic collection flow end to end:
// probe, restart, poll, capture, filter, vendor script, archive. The
// stages run strictly sequentially; each failure is classified where it
// is detected and either halts the run (auth/connectivity) or degrades
// it to placeholder artifacts so later stages keep a uniform
// precondition.
package collect

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/routerlab/clashdiag/internal/archive"
	"github.com/routerlab/clashdiag/internal/capture"
	"github.com/routerlab/clashdiag/internal/codes"
	"github.com/routerlab/clashdiag/internal/config"
	"github.com/routerlab/clashdiag/internal/logfilter"
	"github.com/routerlab/clashdiag/internal/poll"
	"github.com/routerlab/clashdiag/internal/probe"
	"github.com/routerlab/clashdiag/internal/service"
	"github.com/routerlab/clashdiag/internal/store"
	"github.com/routerlab/clashdiag/internal/trace"
	"github.com/routerlab/clashdiag/internal/vendorscript"
)

const (
	ExitOK    = 0
	ExitFatal = 1
)

type StageStatus struct {
	Stage      string `json:"stage"`
	OK         bool   `json:"ok"`
	Code       string `json:"code,omitempty"`
	Detail     string `json:"detail,omitempty"`
	DurationMs int64  `json:"durationMs"`
}

// Report is the run manifest, written next to the archive on completion.
type Report struct {
	SchemaVersion  int           `json:"schemaVersion"`
	StartedAt      string        `json:"startedAt"`
	FinishedAt     string        `json:"finishedAt"`
	CaptureSkipped bool          `json:"captureSkipped,omitempty"`
	CaptureBytes   int64         `json:"captureBytes"`
	FilteredLines  int           `json:"filteredLines"`
	ArchivePath    string        `json:"archivePath,omitempty"`
	Stages         []StageStatus `json:"stages"`
}

// Collector threads the config, credential, and injected collaborators
// through the stages. All fields except Config are optional; zero values
// get process defaults.
type Collector struct {
	Config config.Config
	Token  string

	Client *http.Client
	Now    func() time.Time
	Sleep  func(time.Duration)
	Stdout io.Writer
	Stderr io.Writer
	Trace  *trace.Writer
}

func (c *Collector) defaults() {
	if c.Client == nil {
		c.Client = &http.Client{}
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Sleep == nil {
		c.Sleep = time.Sleep
	}
	if c.Stdout == nil {
		c.Stdout = os.Stdout
	}
	if c.Stderr == nil {
		c.Stderr = os.Stderr
	}
	if c.Trace == nil {
		c.Trace = trace.NewWriter(c.Config.ScratchDir)
	}
}

func (c *Collector) infof(format string, args ...any) {
	fmt.Fprintf(c.Stdout, "INFO: "+format+"\n", args...)
}

func (c *Collector) errorf(format string, args ...any) {
	fmt.Fprintf(c.Stderr, "ERROR: "+format+"\n", args...)
}

// Run executes the collection flow and returns the run report and the
// process exit code. Only authentication failure and an unreachable API
// at the initial check are fatal; everything later degrades.
func (c *Collector) Run(ctx context.Context) (Report, int) {
	c.defaults()
	cfg := c.Config

	rep := Report{
		SchemaVersion: 1,
		StartedAt:     c.Now().UTC().Format(time.RFC3339),
	}
	stage := func(name string, start time.Time, ok bool, code, detail string) {
		st := StageStatus{
			Stage:      name,
			OK:         ok,
			Code:       code,
			Detail:     detail,
			DurationMs: time.Since(start).Milliseconds(),
		}
		rep.Stages = append(rep.Stages, st)
		c.Trace.Stage(c.Now(), name, ok, code, time.Since(start), detail)
	}

	// Initial probe: validates connectivity and the credential before
	// anything is restarted.
	c.infof("checking control API at %s", cfg.APIBaseURL)
	start := time.Now()
	pr := probe.Check(ctx, c.Client, cfg.APIBaseURL, c.Token, cfg.ScratchDir, cfg.ProbeTimeout())
	switch pr.Outcome {
	case probe.AuthFailed:
		stage("probe", start, false, codes.Auth, fmt.Sprintf("status=%d", pr.Status))
		c.errorf("authentication failed: the API rejected the provided secret")
		rep.FinishedAt = c.Now().UTC().Format(time.RFC3339)
		return rep, ExitFatal
	case probe.ConnectFailed:
		stage("probe", start, false, codes.Connect, fmt.Sprintf("status=%d", pr.Status))
		c.errorf("cannot reach the control API at %s", cfg.APIBaseURL)
		rep.FinishedAt = c.Now().UTC().Format(time.RFC3339)
		return rep, ExitFatal
	}
	stage("probe", start, true, "", "status=200")
	c.infof("control API reachable, credential accepted")

	// Restart. The command's exit status is advisory; the poller below
	// is the real gate.
	c.infof("restarting service: %s", strings.Join(cfg.RestartCommand, " "))
	start = time.Now()
	if res, err := service.Restart(ctx, cfg.RestartCommand); err != nil {
		stage("restart", start, false, codes.Spawn, err.Error())
		c.errorf("restart command failed to start: %v", err)
	} else {
		stage("restart", start, true, "", fmt.Sprintf("exitCode=%d", res.ExitCode))
	}
	c.infof("waiting %s for the service to settle", cfg.RestartSettle())
	c.Sleep(cfg.RestartSettle())

	// Poll until the API answers 200 again.
	c.infof("polling for availability (up to %s)", cfg.PollTimeout())
	start = time.Now()
	state := poll.Wait(ctx, poll.Opts{
		Interval: cfg.PollInterval(),
		Timeout:  cfg.PollTimeout(),
		Probe: func(ctx context.Context) (int, error) {
			return probe.CheckStatus(ctx, c.Client, cfg.APIBaseURL, c.Token, cfg.PollProbeTimeout())
		},
	})

	if state != poll.Ready {
		stage("poll", start, false, codes.AvailabilityTimeout, "")
		c.errorf("service did not become available within %s; skipping log capture", cfg.PollTimeout())
		rep.CaptureSkipped = true
		if err := store.WriteFileAtomic(cfg.CaptureFile, nil); err != nil {
			c.errorf("failed to create placeholder capture file: %v", err)
		}
	} else {
		stage("poll", start, true, "", "")
		c.infof("service is available again")

		// Bounded background read, joined before the next stage.
		c.infof("capturing log stream for %s", cfg.CaptureDuration())
		start = time.Now()
		type capResult struct {
			n   int64
			err error
		}
		done := make(chan capResult, 1)
		go func() {
			n, err := capture.Stream(ctx, c.Client, cfg.LogURL(), c.Token, cfg.CaptureFile, cfg.CaptureDuration(), cfg.CaptureMaxBytes)
			done <- capResult{n: n, err: err}
		}()
		res := <-done
		rep.CaptureBytes = res.n
		switch {
		case res.err != nil:
			stage("capture", start, false, codes.IO, res.err.Error())
			c.errorf("log capture failed: %v", res.err)
		case res.n == 0:
			stage("capture", start, false, codes.CaptureEmpty, "")
			c.errorf("log capture produced no data")
		default:
			stage("capture", start, true, "", fmt.Sprintf("bytes=%d", res.n))
			c.infof("captured %d bytes", res.n)
		}
	}

	// Filter the capture down to debug-level records. Handles an empty
	// or missing capture by producing an empty output file.
	start = time.Now()
	matched, err := logfilter.Split(cfg.CaptureFile, cfg.FilteredFile, cfg.DebugMarker)
	if err != nil {
		stage("filter", start, false, codes.IO, err.Error())
		c.errorf("failed to filter captured log: %v", err)
	} else {
		stage("filter", start, true, "", fmt.Sprintf("lines=%d", matched))
		c.infof("extracted %d debug-level records", matched)
	}
	rep.FilteredLines = matched

	// Vendor debug routine. Missing output is reported here but only
	// becomes fatal at the archive precondition.
	c.infof("running vendor debug script %s", cfg.VendorScript)
	start = time.Now()
	if err := vendorscript.Run(ctx, cfg.VendorScript, cfg.VendorOutput); err != nil {
		stage("vendor_script", start, false, codes.ScriptOutputMissing, err.Error())
		c.errorf("vendor debug script: %v", err)
	} else {
		stage("vendor_script", start, true, "", "")
	}

	// Archive the three log files, then clean up.
	stamp := c.Now()
	name := archive.Name(stamp)
	archivePath := filepath.Join(cfg.ArchiveDir, name)
	files := []string{cfg.CaptureFile, cfg.FilteredFile, cfg.VendorOutput}

	start = time.Now()
	if err := archive.Create(archivePath, files); err != nil {
		stage("archive", start, false, codes.ArchiveFailed, err.Error())
		c.errorf("failed to create archive: %v", err)
		c.errorf("temporary log files kept for manual recovery")
		rep.FinishedAt = c.Now().UTC().Format(time.RFC3339)
		c.writeManifest(archivePath, rep)
		return rep, ExitOK
	}

	abs, err := filepath.Abs(archivePath)
	if err != nil {
		abs = archivePath
	}
	rep.ArchivePath = abs
	stage("archive", start, true, "", abs)

	archive.RemoveAll(files)
	c.infof("diagnostic bundle written to %s", abs)

	rep.FinishedAt = c.Now().UTC().Format(time.RFC3339)
	c.writeManifest(archivePath, rep)
	return rep, ExitOK
}

// writeManifest drops the run report next to the archive. Best-effort:
// the manifest is supporting material, never a reason to fail the run.
func (c *Collector) writeManifest(archivePath string, rep Report) {
	path := strings.TrimSuffix(archivePath, ".tar.gz") + ".json"
	if err := store.WriteJSONAtomic(path, rep); err != nil {
		c.errorf("failed to write run manifest: %v", err)
	}
}
