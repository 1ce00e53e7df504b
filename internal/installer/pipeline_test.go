package installer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"setup-ubuntu/internal/runner/runnertest"
)

func TestPipelineContinuesAfterFailedStep(t *testing.T) {
	r := runnertest.NewFake(map[string]string{"apt install -y broken": "E: broken"})
	p := NewPipeline(r, []Step{
		NewScriptStep("first", "apt", []string{"update"}, false),
		NewAptStep("second", []string{"broken"}, false),
		NewToolchainStep("third", "cargo", []string{"install"}, []string{"bat"}),
	})

	report := p.Run(context.Background())

	require.Len(t, report.Outcomes, 3)
	assert.Equal(t, []string{"apt update", "apt install -y broken", "cargo install bat"}, r.Lines())
	assert.True(t, report.Failed())

	failures := report.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "second", failures[0].Label)

	assert.Equal(t, StatusSucceeded, report.Outcomes[0].Status)
	assert.Equal(t, StatusFailed, report.Outcomes[1].Status)
	assert.Equal(t, StatusSucceeded, report.Outcomes[2].Status)
}

func TestPipelineRunsStepsInOrder(t *testing.T) {
	r := runnertest.NewFake(nil)
	p := NewPipeline(r, []Step{
		NewScriptStep("update", "apt", []string{"update"}, true),
		NewAptStep("apt", []string{"git"}, true),
		NewScriptStep("zsh", "sh", []string{"-c", "install"}, false),
		NewToolchainStep("cargo", "cargo", []string{"install"}, []string{"bat", "exa"}),
	})

	report := p.Run(context.Background())

	assert.False(t, report.Failed())
	assert.Empty(t, report.Failures())
	assert.Equal(t, []string{
		"sudo apt update",
		"sudo apt install -y git",
		"sh -c install",
		"cargo install bat",
		"cargo install exa",
	}, r.Lines())
}

func TestPipelineEmpty(t *testing.T) {
	report := NewPipeline(runnertest.NewFake(nil), nil).Run(context.Background())
	assert.Empty(t, report.Outcomes)
	assert.False(t, report.Failed())
}
