// Package archive bundles the collected log files into the final
// timestamped .tar.gz artifact.
package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"
)

// Name returns the timestamped archive file name for a capture taken at
// now. Second resolution keeps successive runs from overwriting each
// other.
func Name(now time.Time) string {
	return "clashdiag_logs_" + now.Format("20060102-150405") + ".tar.gz"
}

// Create writes a gzip-compressed tar archive at path containing exactly
// the given files, flattened to their base names. Every input file must
// already exist (zero-byte files are fine); if any is missing, no
// archive is created. On a mid-write failure the partial archive is left
// in place for the operator — an accepted limitation, not an invariant.
func Create(path string, files []string) error {
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			return fmt.Errorf("constituent file %s: %w", file, err)
		}
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	for _, file := range files {
		if err := addFile(tw, file); err != nil {
			return fmt.Errorf("archive %s: %w", file, err)
		}
	}

	if err := tw.Close(); err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}
	return out.Close()
}

func addFile(tw *tar.Writer, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	fi, err := f.Stat()
	if err != nil {
		return err
	}
	hdr, err := tar.FileInfoHeader(fi, "")
	if err != nil {
		return err
	}
	hdr.Name = filepath.Base(file)

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err = io.Copy(tw, f)
	return err
}

// RemoveAll deletes the temporary files best-effort. Missing files are
// ignored.
func RemoveAll(files []string) {
	for _, file := range files {
		_ = os.Remove(file)
	}
}
