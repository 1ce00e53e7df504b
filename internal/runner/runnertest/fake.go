// Package runnertest provides a scripted runner.Runner for tests.
package runnertest

import (
	"context"
	"fmt"
	"sync"

	"setup-ubuntu/internal/runner"
)

// Call records one invocation seen by Fake.
type Call struct {
	Name string
	Args []string
}

// Line returns the invocation as a single command line.
func (c Call) Line() string {
	return runner.CommandLine(c.Name, c.Args...)
}

// Fake is a scripted Runner. Command lines listed in Fail exit with status 1 and
// their value as stderr; everything else succeeds.
type Fake struct {
	mu    sync.Mutex
	Fail  map[string]string
	Calls []Call
}

// NewFake returns a Fake that fails the given command lines.
func NewFake(fail map[string]string) *Fake {
	if fail == nil {
		fail = make(map[string]string)
	}
	return &Fake{Fail: fail}
}

// Run records the call and answers from the script.
func (f *Fake) Run(ctx context.Context, name string, args ...string) (runner.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := Call{Name: name, Args: append([]string(nil), args...)}
	f.Calls = append(f.Calls, call)

	if err := ctx.Err(); err != nil {
		return runner.Result{ExitCode: -1}, err
	}
	if stderr, ok := f.Fail[call.Line()]; ok {
		return runner.Result{Stderr: []byte(stderr), ExitCode: 1}, fmt.Errorf("exit status 1")
	}
	return runner.Result{Stdout: []byte("ok\n")}, nil
}

// Lines returns every recorded call as a command line, in order.
func (f *Fake) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	lines := make([]string, 0, len(f.Calls))
	for _, c := range f.Calls {
		lines = append(lines, c.Line())
	}
	return lines
}

var _ runner.Runner = (*Fake)(nil)
