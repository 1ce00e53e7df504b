// Package runner invokes external programs: package managers, installers and scripts.
package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"setup-ubuntu/internal/logger"
)

// Result is what a finished subprocess left behind.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner runs a program to completion. A non-nil error means the program could not
// be started or exited with a non-zero status; Result is filled in either way.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// Exec runs programs on the host with os/exec.
type Exec struct{}

// NewExec returns a Runner backed by os/exec.
func NewExec() *Exec {
	return &Exec{}
}

// Run blocks until the program exits, capturing stdout and stderr.
func (e *Exec) Run(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("[DEBUG] Running command: %s\n", CommandLine(name, args...))
	err := cmd.Run()

	result := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	case err != nil:
		result.ExitCode = -1
	}
	return result, err
}

// CommandLine renders name and args the way a user would type them.
func CommandLine(name string, args ...string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

var _ Runner = (*Exec)(nil)
