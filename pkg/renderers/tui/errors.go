package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoUploader is returned when a flow asks for a file and no uploader
	// was configured.
	ErrNoUploader = errors.New("tui: no uploader configured")
	// ErrTooManyRetries stops a runner that keeps getting rejected.
	ErrTooManyRetries = errors.New("tui: too many rejected submissions")
)
