// Package cred reads the optional API secret from interactive input.
package cred

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompt reads one bearer token from stdin. When stdin is a terminal the
// token is read with echo disabled; otherwise a single line is consumed
// (scripted/piped invocations). An empty result is a legitimate "no
// authentication" choice, not an error — no local validation happens here.
func Prompt(stdin io.Reader, stderr io.Writer) (string, error) {
	fmt.Fprint(stderr, "API secret (leave empty for none): ")

	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(stderr)
		if err != nil {
			return "", err
		}
		return strings.TrimRight(string(raw), "\r\n"), nil
	}

	r := bufio.NewReader(stdin)
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	fmt.Fprintln(stderr)
	return strings.TrimRight(line, "\r\n"), nil
}
