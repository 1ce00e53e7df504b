package dotfiles

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"setup-ubuntu/internal/logger"
)

// vcsSegments are path segments that identify version-control metadata.
// Only whole segments match: .gitconfig and .gitignore are regular dotfiles.
var vcsSegments = map[string]bool{
	".git": true,
	".hg":  true,
	".svn": true,
}

// isVCSPath reports whether any segment of rel is version-control metadata.
func isVCSPath(rel string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		if vcsSegments[seg] {
			return true
		}
	}
	return false
}

// MirrorStats counts what Mirror created.
type MirrorStats struct {
	Dirs     int
	Files    int
	Symlinks int
	Skipped  int
}

// Mirror recursively copies every entry under src into dst, preserving directory
// structure and file modes and skipping version-control metadata. Existing files in
// dst are overwritten; nothing in dst is removed.
func Mirror(fs afero.Fs, src, dst string) (MirrorStats, error) {
	var stats MirrorStats
	err := afero.Walk(fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if isVCSPath(rel) {
			logger.Debug("[DEBUG] Skipping %s\n", path)
			stats.Skipped++
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		target := filepath.Join(dst, rel)
		switch {
		case info.IsDir():
			if err := fs.MkdirAll(target, info.Mode().Perm()|0700); err != nil {
				return fmt.Errorf("failed to create dir %s: %w", target, err)
			}
			logger.Debug("[DEBUG] Created directory: %s\n", target)
			stats.Dirs++
		case info.Mode()&os.ModeSymlink != 0:
			if err := copySymlink(fs, path, target); err != nil {
				return err
			}
			stats.Symlinks++
		default:
			if err := copyFile(fs, path, target, 0); err != nil {
				return fmt.Errorf("failed to copy file from %s to %s: %w", path, target, err)
			}
			logger.Debug("[DEBUG] Copied %s to %s\n", path, target)
			stats.Files++
		}
		return nil
	})
	return stats, err
}

// copySymlink recreates the link at path as target. Filesystems without link
// support get the link skipped.
func copySymlink(fs afero.Fs, path, target string) error {
	reader, okR := fs.(afero.LinkReader)
	linker, okL := fs.(afero.Linker)
	if !okR || !okL {
		logger.Warn("[WARN] Symlinks unsupported, skipping %s\n", path)
		return nil
	}
	dest, err := reader.ReadlinkIfPossible(path)
	if err != nil {
		return fmt.Errorf("failed to read link %s: %w", path, err)
	}
	if err := fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	if err := fs.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to replace %s: %w", target, err)
	}
	if err := linker.SymlinkIfPossible(dest, target); err != nil {
		return fmt.Errorf("failed to link %s: %w", target, err)
	}
	return nil
}

// copyFile copies a file from src to dst, preserving permissions.
// It creates any missing directories in the destination path.
func copyFile(fs afero.Fs, src, dst string, modeOverride os.FileMode) (err error) {
	in, err := fs.Open(src)
	if err != nil {
		return fmt.Errorf("open source failed: %w", err)
	}
	defer in.Close()

	stat, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source failed: %w", err)
	}
	mode := stat.Mode().Perm()
	if modeOverride != 0 {
		mode = modeOverride
	}

	if err := fs.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("mkdir failed: %w", err)
	}

	out, err := fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create target failed: %w", err)
	}
	defer func() {
		cerr := out.Close()
		if err == nil {
			err = cerr
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy failed: %w", err)
	}
	// OpenFile only applies mode on creation; overwritten files keep theirs otherwise.
	return fs.Chmod(dst, mode)
}

// downloadFile downloads the content located at the specified URL and saves it to the destination path.
func downloadFile(url, destPath string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to GET %s: %w", url, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Error("[ERROR] Failed to close response body: %s\n", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: HTTP status %d", url, resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", destPath, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			logger.Error("[ERROR] Failed to close destination file: %s\n", cerr)
		}
	}()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to write response to file: %w", err)
	}

	logger.Debug("[DEBUG] Downloaded archive to: %s\n", destPath)
	return nil
}
