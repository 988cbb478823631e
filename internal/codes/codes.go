// Package codes defines the stable error-code strings used in operator
// output and trace events.
package codes

const (
	Usage   = "CLASHDIAG_E_USAGE"
	IO      = "CLASHDIAG_E_IO"
	Auth    = "CLASHDIAG_E_AUTH"
	Connect = "CLASHDIAG_E_CONNECT"
	Spawn   = "CLASHDIAG_E_SPAWN"

	AvailabilityTimeout = "CLASHDIAG_E_AVAILABILITY_TIMEOUT"
	CaptureEmpty        = "CLASHDIAG_E_CAPTURE_EMPTY"
	ScriptOutputMissing = "CLASHDIAG_E_SCRIPT_OUTPUT_MISSING"
	ArchiveFailed       = "CLASHDIAG_E_ARCHIVE"
)
