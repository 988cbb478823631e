// Package doctor runs read-only preflight checks for the collection
// environment. It never restarts the service or writes anything outside
// the scratch directory.
package doctor

import (
	"context"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/routerlab/clashdiag/internal/config"
	"github.com/routerlab/clashdiag/internal/probe"
)

type Check struct {
	ID      string `json:"id"`
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

type Result struct {
	OK     bool    `json:"ok"`
	Checks []Check `json:"checks"`
}

func Run(ctx context.Context, cfg config.Config) Result {
	res := Result{OK: true}
	add := func(id string, ok bool, msg string) {
		if !ok {
			res.OK = false
		}
		res.Checks = append(res.Checks, Check{ID: id, OK: ok, Message: msg})
	}

	// Write access: create and remove a temp file under the scratch dir.
	tmp := filepath.Join(cfg.ScratchDir, ".clashdiag.doctor.tmp")
	if err := os.WriteFile(tmp, []byte("ok\n"), 0o644); err != nil {
		add("scratch_write", false, err.Error())
	} else {
		_ = os.Remove(tmp)
		add("scratch_write", true, "")
	}

	if fi, err := os.Stat(cfg.VendorScript); err != nil {
		add("vendor_script", false, "missing: "+cfg.VendorScript)
	} else if fi.Mode()&0o111 == 0 {
		add("vendor_script", false, "not executable: "+cfg.VendorScript)
	} else {
		add("vendor_script", true, "")
	}

	if len(cfg.RestartCommand) == 0 {
		add("restart_command", false, "not configured")
	} else if _, err := exec.LookPath(cfg.RestartCommand[0]); err != nil {
		add("restart_command", false, err.Error())
	} else {
		add("restart_command", true, "")
	}

	// Reachability is informational: a stopped service is a legitimate
	// reason to run this tool in the first place.
	client := &http.Client{}
	status, err := probe.CheckStatus(ctx, client, cfg.APIBaseURL, "", 2*time.Second)
	if err != nil {
		add("api_reachable", true, "unreachable (ok if the service is down): "+err.Error())
	} else {
		add("api_reachable", true, http.StatusText(status))
	}

	return res
}
