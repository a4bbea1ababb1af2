package pyext

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/sh"
)

// Invocation describes one external process run.
type Invocation struct {
	Path string   // Resolved executable path
	Args []string // Arguments, not including Path
	Dir  string   // Working directory
	Env  []string // Full environment in KEY=VALUE form
}

// String renders the invocation as a shell-like command line.
func (inv Invocation) String() string {
	return strings.Join(append([]string{inv.Path}, inv.Args...), " ")
}

// Runner executes external processes.
//
// Implementations return the combined output lines and, when the process
// could not be started or exited non-zero, an error. ExecRunner reports the
// latter as *ToolError.
type Runner interface {
	Run(ctx context.Context, inv Invocation) ([]string, error)
}

// ExecRunner runs invocations with os/exec.
type ExecRunner struct {
	// Stream, when set, receives output as it is produced in addition to
	// the captured lines.
	Stream io.Writer
}

// Run executes the invocation synchronously.
func (r *ExecRunner) Run(ctx context.Context, inv Invocation) ([]string, error) {
	cmd := exec.CommandContext(ctx, inv.Path, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Env = inv.Env

	var buf bytes.Buffer
	var out io.Writer = &buf
	if r.Stream != nil {
		out = io.MultiWriter(&buf, r.Stream)
	}
	cmd.Stdout = out
	cmd.Stderr = out

	err := cmd.Run()
	lines := splitLines(buf.Bytes())
	if err != nil {
		return lines, &ToolError{
			Tool:     filepath.Base(inv.Path),
			ExitCode: sh.ExitStatus(err),
			Output:   lines,
			Err:      err,
		}
	}

	return lines, nil
}
