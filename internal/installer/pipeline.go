package installer

import (
	"context"

	"setup-ubuntu/internal/logger"
	"setup-ubuntu/internal/runner"
)

// Pipeline runs install steps strictly in order, one at a time. Package managers
// hold a system-wide lock, so nothing here runs concurrently.
type Pipeline struct {
	runner runner.Runner
	steps  []Step
}

// NewPipeline creates a pipeline over steps using r for every subprocess.
func NewPipeline(r runner.Runner, steps []Step) *Pipeline {
	return &Pipeline{runner: r, steps: steps}
}

// Report holds one outcome per step, in execution order.
type Report struct {
	Outcomes []StepOutcome
}

// Failures returns the outcomes of steps that did not fully succeed.
func (r Report) Failures() []StepOutcome {
	var out []StepOutcome
	for _, o := range r.Outcomes {
		if o.Failed() {
			out = append(out, o)
		}
	}
	return out
}

// Failed reports whether any step failed.
func (r Report) Failed() bool {
	return len(r.Failures()) > 0
}

// Run executes every step. A failed step is recorded and the next step still runs;
// nothing is retried. The returned report covers all steps.
func (p *Pipeline) Run(ctx context.Context) Report {
	logger.Debug("[DEBUG] Starting pipeline with %d steps\n", len(p.steps))

	report := Report{Outcomes: make([]StepOutcome, 0, len(p.steps))}
	for _, step := range p.steps {
		logger.Header("%s\n", step.Label)
		logger.Debug("[DEBUG] %s\n", step.Describe())

		outcome := step.Run(ctx, p.runner)
		if outcome.Failed() {
			logger.Error("[ERROR] %s %s: %v\n", step.Label, outcome.Status, outcome.Err)
		} else {
			logger.Info("[INFO] %s: %s\n", step.Label, outcome.Message)
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	logger.Debug("[DEBUG] Finished pipeline, %d of %d steps failed\n", len(report.Failures()), len(p.steps))
	return report
}
