// Package logfilter derives the debug-only view of a captured log.
package logfilter

import (
	"bufio"
	"bytes"
	"io"
	"os"
)

// Split writes every line of src containing marker to dst, in order and
// byte-for-byte, line terminators included. A missing or empty src is
// not an error: dst is still created (empty) so downstream existence
// checks hold uniformly. Returns the number of matching lines.
func Split(src, dst, marker string) (int, error) {
	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	defer func() { _ = out.Close() }()

	in, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	defer func() { _ = in.Close() }()

	// bufio.Reader rather than Scanner: lines must pass through
	// unmodified, including \r\n endings, and log records can exceed
	// Scanner's default token size.
	r := bufio.NewReader(in)
	w := bufio.NewWriter(out)
	needle := []byte(marker)

	matched := 0
	for {
		line, err := r.ReadBytes('\n')
		if len(line) > 0 && bytes.Contains(line, needle) {
			if _, werr := w.Write(line); werr != nil {
				return matched, werr
			}
			matched++
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return matched, err
		}
	}
	return matched, w.Flush()
}
