package installer

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/afero"

	"setup-ubuntu/internal/config"
	"setup-ubuntu/internal/errors"
	"setup-ubuntu/internal/logger"
	"setup-ubuntu/internal/packages"
	"setup-ubuntu/internal/runner"
)

// Kind tags the variant of a Step. The set is closed: Run switches over it exhaustively.
type Kind int

const (
	// KindApt installs its whole list with one package-manager invocation.
	KindApt Kind = iota + 1
	// KindToolchain installs each package with its own installer invocation.
	KindToolchain
	// KindScript runs one command with no package list.
	KindScript
)

func (k Kind) String() string {
	switch k {
	case KindApt:
		return config.StepApt
	case KindToolchain:
		return config.StepToolchain
	case KindScript:
		return config.StepScript
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Step is one unit of provisioning work. Only the fields its Kind needs are set.
// A Step is built once per run and never modified afterwards.
type Step struct {
	Kind     Kind
	Label    string
	Packages []string // apt and toolchain
	Command  string
	Args     []string
	Sudo     bool
	Timeout  time.Duration

	// unavailable holds the error that kept the package list from loading.
	unavailable error
}

// NewAptStep installs packages with a single `apt install -y` invocation.
func NewAptStep(label string, pkgs []string, sudo bool) Step {
	return Step{Kind: KindApt, Label: label, Packages: pkgs, Command: "apt", Args: []string{"install", "-y"}, Sudo: sudo}
}

// NewToolchainStep runs `command args... <package>` once per package.
func NewToolchainStep(label, command string, args, pkgs []string) Step {
	return Step{Kind: KindToolchain, Label: label, Packages: pkgs, Command: command, Args: args}
}

// NewScriptStep runs a single command.
func NewScriptStep(label, command string, args []string, sudo bool) Step {
	return Step{Kind: KindScript, Label: label, Command: command, Args: args, Sudo: sudo}
}

// BuildSteps turns configured steps into runnable Steps, loading every package list.
// A list that cannot be loaded does not stop the build: the dependent step carries the
// error and fails when run, leaving the other steps untouched.
func BuildSteps(fs afero.Fs, cfgSteps []config.Step) []Step {
	steps := make([]Step, 0, len(cfgSteps))
	for _, cs := range cfgSteps {
		var step Step
		switch cs.Type {
		case config.StepApt:
			step = NewAptStep(cs.Label, nil, cs.Sudo)
			if cs.Command != "" {
				step.Command = cs.Command
			}
			if len(cs.Args) > 0 {
				step.Args = cs.Args
			}
		case config.StepToolchain:
			step = NewToolchainStep(cs.Label, cs.Command, cs.Args, nil)
			step.Sudo = cs.Sudo
		default:
			step = NewScriptStep(cs.Label, cs.Command, cs.Args, cs.Sudo)
		}
		step.Timeout = time.Duration(cs.Timeout)

		if step.Kind != KindScript {
			pkgs, err := packages.Load(fs, cs.List)
			if err != nil {
				logger.Debug("[DEBUG] Package list for %s unavailable: %v\n", cs.Label, err)
				step.unavailable = err
			}
			step.Packages = pkgs
		}
		steps = append(steps, step)
	}
	return steps
}

// Describe returns a one-line summary of what the step will do.
func (s Step) Describe() string {
	switch s.Kind {
	case KindApt:
		return fmt.Sprintf("%s: %s %s", s.Label, s.commandLine(), strings.Join(s.Packages, " "))
	case KindToolchain:
		return fmt.Sprintf("%s: %s <package> for %s", s.Label, s.commandLine(), strings.Join(s.Packages, ", "))
	case KindScript:
		return fmt.Sprintf("%s: %s", s.Label, s.commandLine())
	}
	return s.Label
}

// Run executes the step and reports its outcome. It never panics on subprocess
// failure and never stops the caller; the outcome carries the cause.
func (s Step) Run(ctx context.Context, r runner.Runner) StepOutcome {
	if s.unavailable != nil {
		return failed(s, s.unavailable)
	}

	switch s.Kind {
	case KindApt:
		return s.runApt(ctx, r)
	case KindToolchain:
		return s.runToolchain(ctx, r)
	case KindScript:
		return s.runScript(ctx, r)
	}
	return failed(s, errors.Newf(errors.ErrInvalidConfig, "unknown step kind %v", s.Kind))
}

// runApt hands the whole list to the package manager. Its exit status already
// aggregates per-package failures, so one non-zero exit fails the entire step.
func (s Step) runApt(ctx context.Context, r runner.Runner) StepOutcome {
	if len(s.Packages) == 0 {
		logger.Warn("[WARN] %s: package list is empty, nothing to install\n", s.Label)
		return succeeded(s, "nothing to install")
	}

	logger.Info("[INFO] Installing %d packages: %s\n", len(s.Packages), strings.Join(s.Packages, " "))
	args := append(append([]string(nil), s.Args...), s.Packages...)
	if err := s.invoke(ctx, r, args); err != nil {
		return failed(s, err)
	}
	return succeeded(s, fmt.Sprintf("installed %d packages", len(s.Packages)))
}

// runToolchain installs packages one by one. A failed package is recorded and the
// next one is still attempted.
func (s Step) runToolchain(ctx context.Context, r runner.Runner) StepOutcome {
	if len(s.Packages) == 0 {
		logger.Warn("[WARN] %s: package list is empty, nothing to install\n", s.Label)
		return succeeded(s, "nothing to install")
	}

	var failedPkgs []string
	var causes []error
	total := len(s.Packages)
	for i, pkg := range s.Packages {
		logger.Info("[INFO] [%d/%d] Installing %s\n", i+1, total, pkg)
		args := append(append([]string(nil), s.Args...), pkg)
		if err := s.invoke(ctx, r, args); err != nil {
			failedPkgs = append(failedPkgs, pkg)
			causes = append(causes, err)
			continue
		}
		logger.Info("[INFO] Installed %s\n", pkg)
	}

	if len(failedPkgs) == 0 {
		return succeeded(s, fmt.Sprintf("installed %d packages", total))
	}

	err := errors.Wrapf(stderrors.Join(causes...), errors.ErrSubprocessFailure,
		"failed to install %d of %d packages: %s", len(failedPkgs), total, strings.Join(failedPkgs, ", "))
	out := failed(s, err)
	out.FailedPackages = failedPkgs
	if len(failedPkgs) < total {
		out.Status = StatusPartial
	}
	return out
}

func (s Step) runScript(ctx context.Context, r runner.Runner) StepOutcome {
	if err := s.invoke(ctx, r, s.Args); err != nil {
		return failed(s, err)
	}
	return succeeded(s, "completed")
}

// invoke runs the step's command with args, honoring Sudo and Timeout.
func (s Step) invoke(ctx context.Context, r runner.Runner, args []string) error {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	name, full := s.Command, args
	if s.Sudo {
		name, full = "sudo", append([]string{s.Command}, args...)
	}
	line := runner.CommandLine(name, full...)

	res, err := r.Run(ctx, name, full...)
	if stderr := strings.TrimSpace(string(res.Stderr)); stderr != "" {
		logger.Debug("[DEBUG] %s stderr:\n%s\n", line, stderr)
	}
	if err != nil {
		logger.Error("[ERROR] %s failed: %v\n", line, err)
		return errors.Wrapf(err, errors.ErrSubprocessFailure, "%s exited with status %d%s", line, res.ExitCode, lastLine(res.Stderr))
	}
	return nil
}

func (s Step) commandLine() string {
	if s.Sudo {
		return runner.CommandLine("sudo", append([]string{s.Command}, s.Args...)...)
	}
	return runner.CommandLine(s.Command, s.Args...)
}

// lastLine returns the final non-empty line of stderr prefixed with ": ", or "".
func lastLine(stderr []byte) string {
	lines := strings.Split(strings.TrimSpace(string(stderr)), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if last == "" {
		return ""
	}
	return ": " + last
}
