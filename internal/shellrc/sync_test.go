package shellrc

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"setup-ubuntu/internal/errors"
)

const (
	zshrc  = "/home/me/.zshrc"
	bashrc = "/home/me/.bashrc"
)

func newEngine(t *testing.T, files map[string]string) (afero.Fs, *Engine) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return fs, NewEngine(fs, NewStore(fs, false))
}

func read(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	raw, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(raw)
}

func TestSyncIsIdempotent(t *testing.T) {
	fs, engine := newEngine(t, map[string]string{zshrc: "export FOO=1\n"})
	canonical := []string{"export FOO=1", "export BAR=2"}
	targets := []Target{{ID: "zsh", Path: zshrc}}

	first, err := engine.Sync(canonical, targets)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"zsh": {"export BAR=2"}}, Appended(first))
	assert.Equal(t, []string{"export FOO=1"}, first[0].Unchanged)
	afterFirst := read(t, fs, zshrc)
	assert.Equal(t, "export FOO=1\nexport BAR=2\n", afterFirst)

	second, err := engine.Sync(canonical, targets)
	require.NoError(t, err)
	assert.Empty(t, second[0].Added)
	assert.Equal(t, afterFirst, read(t, fs, zshrc))
}

func TestSyncTargetsAreIndependent(t *testing.T) {
	fs, engine := newEngine(t, map[string]string{
		zshrc:  "export FOO=1\n",
		bashrc: "# bash\n",
	})

	results, err := engine.Sync([]string{"export FOO=1"}, []Target{
		{ID: "zsh", Path: zshrc},
		{ID: "bash", Path: bashrc},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string][]string{"zsh": nil, "bash": {"export FOO=1"}}, Appended(results))
	assert.Equal(t, "export FOO=1\n", read(t, fs, zshrc))
	assert.Equal(t, "# bash\nexport FOO=1\n", read(t, fs, bashrc))
}

func TestSyncPreservesCanonicalOrder(t *testing.T) {
	fs, engine := newEngine(t, map[string]string{bashrc: "export B=2\n"})
	canonical := []string{"export C=3", "export A=1", "export B=2", "export D=4"}

	results, err := engine.Sync(canonical, []Target{{ID: "bash", Path: bashrc}})
	require.NoError(t, err)

	assert.Equal(t, []string{"export C=3", "export A=1", "export D=4"}, results[0].Added)
	assert.Equal(t, "export B=2\nexport C=3\nexport A=1\nexport D=4\n", read(t, fs, bashrc))
}

func TestSyncNeverTouchesExistingLines(t *testing.T) {
	existing := "export FOO=1\nexport FOO=1\nexportBROKEN\n  export INDENTED=1\nEXPORT UPPER=1\nalias ll='ls -al'\n"
	fs, engine := newEngine(t, map[string]string{zshrc: existing})
	canonical := []string{"export FOO=1", "export INDENTED=1", "export UPPER=1"}

	_, err := engine.Sync(canonical, []Target{{ID: "zsh", Path: zshrc}})
	require.NoError(t, err)

	assert.Equal(t, existing+"export INDENTED=1\nexport UPPER=1\n", read(t, fs, zshrc))
}

func TestSyncTerminatesUnfinishedLastLine(t *testing.T) {
	fs, engine := newEngine(t, map[string]string{zshrc: "alias g=git"})

	_, err := engine.Sync([]string{"export FOO=1"}, []Target{{ID: "zsh", Path: zshrc}})
	require.NoError(t, err)
	assert.Equal(t, "alias g=git\nexport FOO=1\n", read(t, fs, zshrc))
}

func TestSyncDuplicateCanonicalAppendedOnce(t *testing.T) {
	fs, engine := newEngine(t, map[string]string{zshrc: ""})

	results, err := engine.Sync([]string{"export A=1", "export A=1"}, []Target{{ID: "zsh", Path: zshrc}})
	require.NoError(t, err)
	assert.Equal(t, []string{"export A=1"}, results[0].Added)
	assert.Equal(t, "export A=1\n", read(t, fs, zshrc))
}

func TestSyncMissingTargetIsFatal(t *testing.T) {
	fs, engine := newEngine(t, map[string]string{zshrc: ""})

	results, err := engine.Sync([]string{"export A=1"}, []Target{
		{ID: "zsh", Path: zshrc},
		{ID: "bash", Path: bashrc},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrTargetMissing))
	assert.Empty(t, results)
	assert.Equal(t, "", read(t, fs, zshrc), "nothing is appended when a target is missing")

	exists, err := afero.Exists(fs, bashrc)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSyncCreateMissing(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/home/me", 0o755))
	engine := NewEngine(fs, NewStore(fs, true))

	_, err := engine.Sync([]string{"export A=1"}, []Target{{ID: "bash", Path: bashrc}})
	require.NoError(t, err)
	assert.Equal(t, "export A=1\n", read(t, fs, bashrc))
}

func TestSyncAppendFailure(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, zshrc, nil, 0o644))
	ro := afero.NewReadOnlyFs(base)
	engine := NewEngine(ro, NewStore(ro, false))

	_, err := engine.Sync([]string{"export A=1"}, []Target{{ID: "zsh", Path: zshrc}})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfigUnavailable))
}

func TestPlan(t *testing.T) {
	snap := Snapshot{exports: map[string]struct{}{"export A=1": {}}}

	added, unchanged := Plan([]string{"export A=1", "export B=2"}, snap)
	assert.Equal(t, []string{"export B=2"}, added)
	assert.Equal(t, []string{"export A=1"}, unchanged)

	added, unchanged = Plan(nil, snap)
	assert.Empty(t, added)
	assert.Empty(t, unchanged)
}

func TestSyncSameFileTwiceAppendsOnce(t *testing.T) {
	fs, engine := newEngine(t, map[string]string{zshrc: ""})

	results, err := engine.Sync([]string{"export A=1"}, []Target{
		{ID: "zsh", Path: zshrc},
		{ID: "zsh-again", Path: "/home/me/../me/.zshrc"},
	})
	require.NoError(t, err)

	assert.Equal(t, "export A=1\n", read(t, fs, zshrc))
	require.Len(t, results, 2)
	assert.Equal(t, []string{"export A=1"}, results[0].Added)
	assert.Empty(t, results[1].Added)
	assert.Equal(t, []string{"export A=1"}, results[1].Unchanged)
}
