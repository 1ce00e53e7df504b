// Package provision runs the phases of a machine setup in order: package steps,
// dotfile deployment and export sync. A failing phase is recorded and the next
// phase still runs; the final report decides the process exit status.
package provision

import (
	"context"
	"time"

	"github.com/spf13/afero"

	"setup-ubuntu/internal/config"
	"setup-ubuntu/internal/dotfiles"
	"setup-ubuntu/internal/installer"
	"setup-ubuntu/internal/logger"
	"setup-ubuntu/internal/runner"
	"setup-ubuntu/internal/shellrc"
)

// Phase names one stage of a run.
type Phase string

const (
	PhasePackages Phase = "packages"
	PhaseDotfiles Phase = "dotfiles"
	PhaseExports  Phase = "exports"
)

// AllPhases lists every phase in execution order.
var AllPhases = []Phase{PhasePackages, PhaseDotfiles, PhaseExports}

// StatusSkipped marks a phase that was disabled in the configuration.
const StatusSkipped installer.Status = "skipped"

// PhaseOutcome is the result of the dotfiles or exports phase.
type PhaseOutcome struct {
	Phase  Phase
	Status installer.Status
	Detail string
	Err    error
}

// Failed reports whether the phase failed.
func (o PhaseOutcome) Failed() bool {
	return o.Status == installer.StatusFailed || o.Status == installer.StatusPartial
}

// RunReport collects everything a run did.
type RunReport struct {
	Started  time.Time
	Finished time.Time
	Steps    []installer.StepOutcome
	Phases   []PhaseOutcome
	Exports  []shellrc.TargetResult
}

// Failed reports whether any step or phase failed.
func (r RunReport) Failed() bool {
	for _, s := range r.Steps {
		if s.Failed() {
			return true
		}
	}
	for _, p := range r.Phases {
		if p.Failed() {
			return true
		}
	}
	return false
}

// Provisioner wires the configuration to the installers, the deployer and the sync engine.
type Provisioner struct {
	cfg      config.Config
	fs       afero.Fs
	runner   runner.Runner
	deployer *dotfiles.Deployer
}

// New returns a Provisioner. fs backs package lists, the canonical export list,
// shell startup files and the dotfile mirror; r runs every subprocess.
func New(cfg config.Config, fs afero.Fs, r runner.Runner) *Provisioner {
	return &Provisioner{cfg: cfg, fs: fs, runner: r, deployer: dotfiles.NewDeployer(fs)}
}

// Run executes the given phases in AllPhases order, or all of them when none are given.
func (p *Provisioner) Run(ctx context.Context, phases ...Phase) RunReport {
	want := make(map[Phase]bool)
	for _, ph := range phases {
		want[ph] = true
	}
	all := len(phases) == 0

	report := RunReport{Started: time.Now()}
	for _, ph := range AllPhases {
		if !all && !want[ph] {
			continue
		}
		switch ph {
		case PhasePackages:
			report.Steps = p.Packages(ctx).Outcomes
		case PhaseDotfiles:
			report.Phases = append(report.Phases, p.Dotfiles(ctx))
		case PhaseExports:
			outcome, results := p.Exports()
			report.Phases = append(report.Phases, outcome)
			report.Exports = results
		}
	}
	report.Finished = time.Now()
	return report
}

// Packages runs every configured install step.
func (p *Provisioner) Packages(ctx context.Context) installer.Report {
	logger.Header("Installing programs\n")
	steps := installer.BuildSteps(p.fs, p.cfg.Steps)
	return installer.NewPipeline(p.runner, steps).Run(ctx)
}

// Dotfiles clones or extracts the dotfiles source and places it into the home directory.
func (p *Provisioner) Dotfiles(ctx context.Context) PhaseOutcome {
	logger.Header("Cloning and placing dotfiles\n")
	if p.cfg.Dotfiles.Skip {
		logger.Info("[INFO] Dotfiles disabled, skipping\n")
		return PhaseOutcome{Phase: PhaseDotfiles, Status: StatusSkipped, Detail: "disabled in configuration"}
	}

	res, err := p.deployer.Deploy(ctx, dotfiles.Request{
		Source:     p.cfg.Dotfiles.Source,
		Branch:     p.cfg.Dotfiles.Branch,
		StagingDir: p.cfg.Dotfiles.StagingDir,
		Dest:       p.cfg.Home,
	})
	if err != nil {
		logger.Error("[ERROR] %v\n", err)
		return PhaseOutcome{Phase: PhaseDotfiles, Status: installer.StatusFailed, Detail: err.Error(), Err: err}
	}
	return PhaseOutcome{
		Phase:  PhaseDotfiles,
		Status: installer.StatusSucceeded,
		Detail: formatDeploy(res),
	}
}

// Exports appends the canonical export declarations missing from each startup file.
// Failures abort this phase only.
func (p *Provisioner) Exports() (PhaseOutcome, []shellrc.TargetResult) {
	logger.Header("Inserting exports into shell startup files\n")
	if len(p.cfg.Exports.Targets) == 0 {
		return PhaseOutcome{Phase: PhaseExports, Status: StatusSkipped, Detail: "no targets configured"}, nil
	}

	canonical, err := shellrc.LoadCanonical(p.fs, p.cfg.Exports.File)
	if err != nil {
		logger.Error("[ERROR] %v\n", err)
		return PhaseOutcome{Phase: PhaseExports, Status: installer.StatusFailed, Detail: err.Error(), Err: err}, nil
	}

	targets := make([]shellrc.Target, 0, len(p.cfg.Exports.Targets))
	for _, t := range p.cfg.Exports.Targets {
		targets = append(targets, shellrc.Target{ID: t.Name, Path: t.Path})
	}

	engine := shellrc.NewEngine(p.fs, shellrc.NewStore(p.fs, p.cfg.Exports.CreateMissing))
	results, err := engine.Sync(canonical, targets)
	if err != nil {
		logger.Error("[ERROR] %v\n", err)
		return PhaseOutcome{Phase: PhaseExports, Status: installer.StatusFailed, Detail: err.Error(), Err: err}, results
	}
	return PhaseOutcome{Phase: PhaseExports, Status: installer.StatusSucceeded, Detail: formatExports(results)}, results
}
