// Package config holds the fixed-path and timing contract the collector
// shares with the service under test. The compiled-in defaults match the
// stock OpenClash layout on OpenWrt; an optional YAML file can override
// individual values for non-standard installs.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable that selects an override
// config file. The collection flow itself takes no flags.
const EnvConfigPath = "CLASHDIAG_CONFIG"

type Config struct {
	// API surface of the proxy service.
	APIBaseURL string `yaml:"apiBaseUrl"`
	LogPath    string `yaml:"logPath"`

	// Fixed-path protocol with the vendor tooling. The vendor debug
	// script writes its report to VendorOutput on its own; only the
	// paths here are negotiable, not the contract.
	ScratchDir   string `yaml:"scratchDir"`
	CaptureFile  string `yaml:"captureFile"`
	FilteredFile string `yaml:"filteredFile"`
	VendorScript string `yaml:"vendorScript"`
	VendorOutput string `yaml:"vendorOutput"`
	ArchiveDir   string `yaml:"archiveDir"`

	RestartCommand []string `yaml:"restartCommand"`

	// Marker substring identifying debug-level records in the captured
	// stream.
	DebugMarker string `yaml:"debugMarker"`

	// Timings, in milliseconds.
	ProbeTimeoutMs     int64 `yaml:"probeTimeoutMs"`
	PollProbeTimeoutMs int64 `yaml:"pollProbeTimeoutMs"`
	PollIntervalMs     int64 `yaml:"pollIntervalMs"`
	PollTimeoutMs      int64 `yaml:"pollTimeoutMs"`
	RestartSettleMs    int64 `yaml:"restartSettleMs"`
	CaptureDurationMs  int64 `yaml:"captureDurationMs"`

	// CaptureMaxBytes caps the streamed capture size. Zero means
	// unbounded (the capture window is the real limit).
	CaptureMaxBytes int64 `yaml:"captureMaxBytes"`
}

func Default() Config {
	return Config{
		APIBaseURL:   "http://127.0.0.1:9090",
		LogPath:      "/logs",
		ScratchDir:   "/tmp",
		CaptureFile:  "/tmp/clash_api.log",
		FilteredFile: "/tmp/clash_debug.log",
		VendorScript: "/usr/share/openclash/openclash_debug.sh",
		VendorOutput: "/tmp/openclash_debug.log",
		ArchiveDir:   "/tmp",

		RestartCommand: []string{"/etc/init.d/openclash", "restart"},

		DebugMarker: `"type":"debug"`,

		ProbeTimeoutMs:     5000,
		PollProbeTimeoutMs: 2000,
		PollIntervalMs:     1000,
		PollTimeoutMs:      30000,
		RestartSettleMs:    5000,
		CaptureDurationMs:  20000,
	}
}

// Load reads a YAML config file. A missing file is not an error; the
// second return reports whether anything was loaded.
func Load(path string) (Config, bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, false, nil
		}
		return Config{}, false, err
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, false, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, true, nil
}

// Merge fills every zero-valued field of overlay from base and returns
// the result. Overlay values win.
func Merge(base, overlay Config) Config {
	res := overlay
	if strings.TrimSpace(res.APIBaseURL) == "" {
		res.APIBaseURL = base.APIBaseURL
	}
	if strings.TrimSpace(res.LogPath) == "" {
		res.LogPath = base.LogPath
	}
	if strings.TrimSpace(res.ScratchDir) == "" {
		res.ScratchDir = base.ScratchDir
	}
	if strings.TrimSpace(res.CaptureFile) == "" {
		res.CaptureFile = base.CaptureFile
	}
	if strings.TrimSpace(res.FilteredFile) == "" {
		res.FilteredFile = base.FilteredFile
	}
	if strings.TrimSpace(res.VendorScript) == "" {
		res.VendorScript = base.VendorScript
	}
	if strings.TrimSpace(res.VendorOutput) == "" {
		res.VendorOutput = base.VendorOutput
	}
	if strings.TrimSpace(res.ArchiveDir) == "" {
		res.ArchiveDir = base.ArchiveDir
	}
	if len(res.RestartCommand) == 0 {
		res.RestartCommand = base.RestartCommand
	}
	if res.DebugMarker == "" {
		res.DebugMarker = base.DebugMarker
	}
	if res.ProbeTimeoutMs == 0 {
		res.ProbeTimeoutMs = base.ProbeTimeoutMs
	}
	if res.PollProbeTimeoutMs == 0 {
		res.PollProbeTimeoutMs = base.PollProbeTimeoutMs
	}
	if res.PollIntervalMs == 0 {
		res.PollIntervalMs = base.PollIntervalMs
	}
	if res.PollTimeoutMs == 0 {
		res.PollTimeoutMs = base.PollTimeoutMs
	}
	if res.RestartSettleMs == 0 {
		res.RestartSettleMs = base.RestartSettleMs
	}
	if res.CaptureDurationMs == 0 {
		res.CaptureDurationMs = base.CaptureDurationMs
	}
	if res.CaptureMaxBytes == 0 {
		res.CaptureMaxBytes = base.CaptureMaxBytes
	}
	return res
}

// LoadMerged resolves the effective config: defaults, overridden by the
// file named in CLASHDIAG_CONFIG when set.
func LoadMerged() (Config, error) {
	base := Default()
	path := strings.TrimSpace(os.Getenv(EnvConfigPath))
	if path == "" {
		return base, nil
	}
	overlay, ok, err := Load(path)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Config{}, fmt.Errorf("config file %s does not exist", path)
	}
	return Merge(base, overlay), nil
}

func (c Config) ProbeTimeout() time.Duration { return ms(c.ProbeTimeoutMs) }

func (c Config) PollProbeTimeout() time.Duration { return ms(c.PollProbeTimeoutMs) }

func (c Config) PollInterval() time.Duration { return ms(c.PollIntervalMs) }

func (c Config) PollTimeout() time.Duration { return ms(c.PollTimeoutMs) }

func (c Config) RestartSettle() time.Duration { return ms(c.RestartSettleMs) }

func (c Config) CaptureDuration() time.Duration { return ms(c.CaptureDurationMs) }

func ms(v int64) time.Duration { return time.Duration(v) * time.Millisecond }

// LogURL joins the API base with the log-stream endpoint.
func (c Config) LogURL() string {
	return strings.TrimRight(c.APIBaseURL, "/") + c.LogPath
}
