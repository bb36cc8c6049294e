package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g. Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrUnsupportedField is returned for fields that are not file uploads.
	ErrUnsupportedField = errors.New("tui: unsupported field")
)
