package pyext

import (
	"errors"
	"fmt"
)

var (
	// ErrBuildToolNotFound is returned when the native build tool is not on PATH.
	ErrBuildToolNotFound = errors.New("build tool not found")

	// ErrUnknownCommand is returned when a command name has no registration.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrVersionNotFound is returned when the version module has no __version__.
	ErrVersionNotFound = errors.New("__version__ not found")
)

// ToolError reports an external tool that exited unsuccessfully.
type ToolError struct {
	Tool     string   // Base name of the executable
	ExitCode int      // Process exit status, 1 when unknown
	Output   []string // Combined stdout/stderr lines
	Err      error    // Underlying exec error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Tool, e.ExitCode)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}
