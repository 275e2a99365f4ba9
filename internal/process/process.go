// Package process terminates the headless browser's process tree when the
// renderer shuts down.
package process

import "errors"

// ErrInvalidPID is returned for pids that cannot name a process tree. Zero
// and negative values would otherwise target the caller's own group.
var ErrInvalidPID = errors.New("invalid pid")
