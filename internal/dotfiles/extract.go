package dotfiles

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip" // For reading .7z archives
	"github.com/xi2/xz"          // For reading .xz compressed data

	"setup-ubuntu/internal/logger"
)

var archiveSuffixes = []string{".tar.gz", ".tgz", ".tar.bz2", ".tar.xz", ".tar", ".zip", ".7z"}

// IsArchive reports whether source names an archive rather than a git remote.
func IsArchive(source string) bool {
	lower := strings.ToLower(source)
	for _, ext := range archiveSuffixes {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// ExtractArchive routes to the extractor for src's format, unpacks into dest and
// returns the root of the extracted tree: dest itself, or its single top-level
// directory when the archive wraps everything in one (as GitHub tarballs do).
func ExtractArchive(src, dest string) (string, error) {
	if err := os.MkdirAll(dest, 0755); err != nil {
		return "", err
	}

	lower := strings.ToLower(src)
	var err error
	switch {
	case strings.HasSuffix(lower, ".zip"):
		logger.Debug("[DEBUG] compression type is zip\n")
		err = extractZip(src, dest)
	case strings.HasSuffix(lower, ".7z"):
		logger.Debug("[DEBUG] compression type is .7z\n")
		err = extract7z(src, dest)
	case strings.HasSuffix(lower, ".tar"), strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"),
		strings.HasSuffix(lower, ".tar.bz2"), strings.HasSuffix(lower, ".tar.xz"):
		logger.Debug("[DEBUG] compression type is .tar.*\n")
		err = extractTarArchive(src, dest)
	default:
		return "", fmt.Errorf("unsupported archive format: %s", src)
	}
	if err != nil {
		return "", err
	}
	return archiveRoot(dest)
}

// archiveRoot descends into dir when it holds exactly one entry and that entry is a
// wrapper directory. A lone dot-directory such as .config is part of the tree itself.
func archiveRoot(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	if len(entries) == 1 && entries[0].IsDir() && !strings.HasPrefix(entries[0].Name(), ".") {
		return filepath.Join(dir, entries[0].Name()), nil
	}
	return dir, nil
}

// safeJoin joins an archive entry name onto dest, rejecting names that escape it.
func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, name)
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes %s", name, dest)
	}
	return target, nil
}

// tarDecompressors maps a tarball suffix to the stream that undoes its compression.
var tarDecompressors = map[string]func(io.Reader) (io.Reader, error){
	".tar.gz":  func(r io.Reader) (io.Reader, error) { return gzip.NewReader(r) },
	".tgz":     func(r io.Reader) (io.Reader, error) { return gzip.NewReader(r) },
	".tar.bz2": func(r io.Reader) (io.Reader, error) { return bzip2.NewReader(r), nil },
	".tar.xz":  func(r io.Reader) (io.Reader, error) { return xz.NewReader(r, 0) },
}

// extractTarArchive unpacks a plain or compressed tarball. Directories, regular
// files and symlinks are restored; other entry types are skipped.
func extractTarArchive(src, dest string) error {
	logger.Debug("[DEBUG] Unpacking %s into %s\n", src, dest)
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	var reader io.Reader = f
	lower := strings.ToLower(src)
	for suffix, decompress := range tarDecompressors {
		if !strings.HasSuffix(lower, suffix) {
			continue
		}
		if reader, err = decompress(f); err != nil {
			return fmt.Errorf("failed to decompress %s: %w", src, err)
		}
		if c, ok := reader.(io.Closer); ok {
			defer c.Close()
		}
		break
	}

	tr := tar.NewReader(reader)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		target, err := safeJoin(dest, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeEntry(target, os.FileMode(hdr.Mode).Perm(), tr); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			_ = os.Remove(target)
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return err
			}
		default:
			logger.Debug("[DEBUG] skipping tar entry %s of type %c\n", hdr.Name, hdr.Typeflag)
		}
	}
}

// entry is one member of a random-access archive (zip or 7z).
type entry struct {
	name  string
	isDir bool
	mode  os.FileMode
	open  func() (io.ReadCloser, error)
}

func extractZip(src, dest string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer r.Close()

	entries := make([]entry, 0, len(r.File))
	for _, f := range r.File {
		entries = append(entries, entry{name: f.Name, isDir: f.FileInfo().IsDir(), mode: f.Mode().Perm(), open: f.Open})
	}
	return extractEntries(entries, dest)
}

func extract7z(src, dest string) error {
	r, err := sevenzip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("failed to open 7z archive: %w", err)
	}
	defer r.Close()

	entries := make([]entry, 0, len(r.File))
	for _, f := range r.File {
		entries = append(entries, entry{name: f.Name, isDir: f.FileInfo().IsDir(), mode: f.Mode().Perm(), open: f.Open})
	}
	return extractEntries(entries, dest)
}

// extractEntries writes every entry below dest, refusing names that escape it.
func extractEntries(entries []entry, dest string) error {
	for _, e := range entries {
		target, err := safeJoin(dest, e.name)
		if err != nil {
			return err
		}
		if e.isDir {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}
		rc, err := e.open()
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", e.name, err)
		}
		err = writeEntry(target, e.mode, rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
	}
	return nil
}

// writeEntry creates target (and its parents) and fills it from r.
func writeEntry(target string, mode os.FileMode, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	if mode == 0 {
		mode = 0644
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
