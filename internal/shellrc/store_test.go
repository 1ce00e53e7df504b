package shellrc

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"setup-ubuntu/internal/errors"
)

func TestStoreRead(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := "# comment\nexport PATH=$HOME/bin:$PATH\r\nexport EDITOR=vim\nexport EDITOR=vim\n  export INDENTED=1\nExport CASE=1\nexport  TWO_SPACES=1\n"
	require.NoError(t, afero.WriteFile(fs, zshrc, []byte(content), 0o644))

	snap, err := NewStore(fs, false).Read(zshrc)
	require.NoError(t, err)

	assert.Equal(t, zshrc, snap.Path)
	assert.Equal(t, 3, snap.Len())
	assert.True(t, snap.Contains("export PATH=$HOME/bin:$PATH"))
	assert.True(t, snap.Contains("export EDITOR=vim"))
	assert.True(t, snap.Contains("export  TWO_SPACES=1"))
	assert.False(t, snap.Contains("export INDENTED=1"))
	assert.False(t, snap.Contains("Export CASE=1"))
	assert.False(t, snap.needsNewline)
}

func TestStoreReadTrailingLine(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, zshrc, []byte("export A=1"), 0o644))

	snap, err := NewStore(fs, false).Read(zshrc)
	require.NoError(t, err)
	assert.True(t, snap.Contains("export A=1"))
	assert.True(t, snap.needsNewline)
}

func TestStoreReadMissing(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := NewStore(fs, false).Read(zshrc)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrTargetMissing))

	require.NoError(t, fs.MkdirAll("/home/me", 0o755))
	snap, err := NewStore(fs, true).Read(zshrc)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Len())

	exists, err := afero.Exists(fs, zshrc)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLoadCanonical(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := "# exports\nexport FOO=1\n\nalias x=y\nexport BAR=2\nexport FOO=1\n"
	require.NoError(t, afero.WriteFile(fs, "/cfg/exports", []byte(content), 0o644))

	decls, err := LoadCanonical(fs, "/cfg/exports")
	require.NoError(t, err)
	assert.Equal(t, []string{"export FOO=1", "export BAR=2", "export FOO=1"}, decls)

	_, err = LoadCanonical(fs, "/cfg/missing")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSourceUnavailable))
}

func TestIsExport(t *testing.T) {
	assert.True(t, IsExport("export A=1"))
	assert.True(t, IsExport("export "))
	assert.False(t, IsExport("export"))
	assert.False(t, IsExport(" export A=1"))
	assert.False(t, IsExport("EXPORT A=1"))
}
