// Package cli is the command surface of clashdiag. A bare invocation
// runs the full collection flow; the only subcommands are diagnostics
// about the tool itself.
package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/routerlab/clashdiag/internal/codes"
	"github.com/routerlab/clashdiag/internal/collect"
	"github.com/routerlab/clashdiag/internal/config"
	"github.com/routerlab/clashdiag/internal/cred"
	"github.com/routerlab/clashdiag/internal/doctor"
)

type Runner struct {
	Version string
	Now     func() time.Time
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
}

func (r Runner) Run(args []string) int {
	if r.Stdin == nil {
		r.Stdin = os.Stdin
	}
	if r.Stdout == nil {
		r.Stdout = os.Stdout
	}
	if r.Stderr == nil {
		r.Stderr = os.Stderr
	}
	if r.Now == nil {
		r.Now = time.Now
	}

	if len(args) == 0 {
		return r.runCollect()
	}

	switch args[0] {
	case "-h", "--help", "help":
		printRootHelp(r.Stdout)
		return 0
	case "version":
		fmt.Fprintf(r.Stdout, "%s\n", r.Version)
		return 0
	case "doctor":
		return r.runDoctor(args[1:])
	default:
		fmt.Fprintf(r.Stderr, codes.Usage+": unknown command %q\n", args[0])
		printRootHelp(r.Stderr)
		return 2
	}
}

func (r Runner) runCollect() int {
	cfg, err := config.LoadMerged()
	if err != nil {
		fmt.Fprintf(r.Stderr, codes.Usage+": %s\n", err.Error())
		return 2
	}

	token, err := cred.Prompt(r.Stdin, r.Stderr)
	if err != nil {
		fmt.Fprintf(r.Stderr, codes.IO+": reading API secret: %s\n", err.Error())
		return 1
	}

	c := &collect.Collector{
		Config: cfg,
		Token:  token,
		Now:    r.Now,
		Stdout: r.Stdout,
		Stderr: r.Stderr,
	}
	_, code := c.Run(context.Background())
	return code
}

func (r Runner) runDoctor(args []string) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	jsonOut := fs.Bool("json", false, "print JSON output")
	help := fs.Bool("help", false, "show help")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(r.Stderr, codes.Usage+": doctor: invalid flags\n")
		return 2
	}
	if *help {
		printDoctorHelp(r.Stdout)
		return 0
	}

	cfg, err := config.LoadMerged()
	if err != nil {
		fmt.Fprintf(r.Stderr, codes.Usage+": %s\n", err.Error())
		return 2
	}

	res := doctor.Run(context.Background(), cfg)
	if *jsonOut {
		enc := json.NewEncoder(r.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(res); err != nil {
			fmt.Fprintf(r.Stderr, codes.IO+": failed to encode json\n")
			return 1
		}
	} else {
		for _, c := range res.Checks {
			mark := "ok"
			if !c.OK {
				mark = "FAIL"
			}
			if c.Message != "" {
				fmt.Fprintf(r.Stdout, "%-16s %s (%s)\n", c.ID, mark, c.Message)
			} else {
				fmt.Fprintf(r.Stdout, "%-16s %s\n", c.ID, mark)
			}
		}
	}
	if !res.OK {
		return 1
	}
	return 0
}

func printRootHelp(w io.Writer) {
	fmt.Fprint(w, `clashdiag - diagnostic log collector for an OpenClash-style proxy service

Usage:
  clashdiag            Run the collection flow (prompts for the API secret).
  clashdiag doctor     Check the environment without touching the service.
  clashdiag version    Print version.

The collection flow restarts the proxy service, captures a bounded window
of its log stream, runs the vendor debug script, and bundles everything
into a timestamped .tar.gz.

Set CLASHDIAG_CONFIG to a YAML file to override paths and timings.
`)
}

func printDoctorHelp(w io.Writer) {
	fmt.Fprint(w, `Usage:
  clashdiag doctor [--json]
`)
}
