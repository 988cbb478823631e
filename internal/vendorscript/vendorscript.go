// Package vendorscript invokes the vendor-supplied debug routine. The
// script is an opaque collaborator: no arguments, no stdin, and its only
// contract is writing a report to one fixed, well-known path.
package vendorscript

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Run deletes any stale output at outputPath, invokes the script, and
// then checks that outputPath exists. The content is deliberately not
// validated beyond existence; archiving fails closed later if the file
// is truly missing. The returned error is a degraded-path signal, not a
// run-fatal condition.
func Run(ctx context.Context, scriptPath, outputPath string) error {
	// A leftover report from an earlier run would make the existence
	// check below a false positive.
	if err := os.Remove(outputPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale output %s: %w", outputPath, err)
	}

	cmd := exec.CommandContext(ctx, scriptPath)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w", scriptPath, err)
	}

	if _, err := os.Stat(outputPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("script produced no output at %s", outputPath)
		}
		return err
	}
	return nil
}
