package installer

// Status is the result class of a step or phase.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	// StatusPartial: some packages of a toolchain step installed, others did not.
	StatusPartial Status = "partially failed"
)

// StepOutcome is the result of running one Step. It is always recorded, never dropped.
type StepOutcome struct {
	Label          string
	Kind           Kind
	Status         Status
	Message        string
	FailedPackages []string
	Err            error
}

// Failed reports whether the step did not fully succeed.
func (o StepOutcome) Failed() bool {
	return o.Status != StatusSucceeded
}

func succeeded(s Step, msg string) StepOutcome {
	return StepOutcome{Label: s.Label, Kind: s.Kind, Status: StatusSucceeded, Message: msg}
}

func failed(s Step, err error) StepOutcome {
	return StepOutcome{Label: s.Label, Kind: s.Kind, Status: StatusFailed, Message: err.Error(), Err: err}
}
