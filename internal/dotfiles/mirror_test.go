package dotfiles

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMirrorSkipsVCSMetadata(t *testing.T) {
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/stage/.zshrc":                "zsh",
		"/stage/.gitconfig":            "[user]",
		"/stage/.config/nvim/init.vim": "set nu",
		"/stage/.git/HEAD":             "ref: refs/heads/main",
		"/stage/.git/objects/ab/cd":    "blob",
		"/stage/vendor/plugin/.git":    "gitdir: ../../.git/modules/plugin",
		"/stage/vendor/plugin/p.vim":   "plugin",
	}
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	require.NoError(t, afero.WriteFile(fs, "/home/me/.zshrc", []byte("old"), 0o644))

	stats, err := Mirror(fs, "/stage", "/home/me")
	require.NoError(t, err)

	for _, rel := range []string{".zshrc", ".gitconfig", ".config/nvim/init.vim", "vendor/plugin/p.vim"} {
		raw, err := afero.ReadFile(fs, filepath.Join("/home/me", rel))
		require.NoError(t, err, rel)
		assert.Equal(t, files[filepath.Join("/stage", rel)], string(raw))
	}
	for _, rel := range []string{".git", "vendor/plugin/.git"} {
		exists, err := afero.Exists(fs, filepath.Join("/home/me", rel))
		require.NoError(t, err)
		assert.False(t, exists, rel)
	}

	assert.Equal(t, 4, stats.Files)
	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, 4, stats.Dirs) // .config, .config/nvim, vendor, vendor/plugin
}

func TestMirrorPreservesMode(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/stage/bin/tool", []byte("#!/bin/sh"), 0o755))

	_, err := Mirror(fs, "/stage", "/home/me")
	require.NoError(t, err)

	info, err := fs.Stat("/home/me/bin/tool")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestMirrorMissingSource(t *testing.T) {
	_, err := Mirror(afero.NewMemMapFs(), "/nowhere", "/home/me")
	assert.Error(t, err)
}

func TestMirrorSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	src, dst := t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "real"), []byte("x"), 0o644))
	require.NoError(t, os.Symlink("real", filepath.Join(src, "link")))

	stats, err := Mirror(afero.NewOsFs(), src, dst)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Symlinks)

	target, err := os.Readlink(filepath.Join(dst, "link"))
	require.NoError(t, err)
	assert.Equal(t, "real", target)
}

func TestIsVCSPath(t *testing.T) {
	tests := map[string]bool{
		".git":             true,
		".git/config":      true,
		"a/.hg/store":      true,
		"a/.svn":           true,
		".gitconfig":       false,
		".gitignore":       false,
		".config/git/conf": false,
		"my.git.notes":     false,
	}
	for rel, want := range tests {
		assert.Equal(t, want, isVCSPath(rel), rel)
	}
}
