package runnertest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeScriptsFailures(t *testing.T) {
	f := NewFake(map[string]string{"cargo install bat": "error: could not compile"})

	_, err := f.Run(context.Background(), "cargo", "install", "ripgrep")
	require.NoError(t, err)

	res, err := f.Run(context.Background(), "cargo", "install", "bat")
	require.Error(t, err)
	assert.Equal(t, 1, res.ExitCode)
	assert.Equal(t, "error: could not compile", string(res.Stderr))

	assert.Equal(t, []string{"cargo install ripgrep", "cargo install bat"}, f.Lines())
}

func TestFakeHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := NewFake(nil).Run(ctx, "apt", "update")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, -1, res.ExitCode)
}
