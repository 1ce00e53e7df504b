// Package shellrc keeps shell startup files in line with a canonical list of
// export declarations, appending only what each file is missing.
package shellrc

import (
	"os"
	"strings"

	"github.com/spf13/afero"

	"setup-ubuntu/internal/errors"
	"setup-ubuntu/internal/logger"
)

// ExportPrefix marks a line as an export declaration. Matching is exact and case-sensitive.
const ExportPrefix = "export "

// IsExport reports whether line is an export declaration.
func IsExport(line string) bool {
	return strings.HasPrefix(line, ExportPrefix)
}

// Snapshot is the set of export declarations present in one startup file when it
// was read. It is immutable; duplicates in the file collapse to one member.
type Snapshot struct {
	Path    string
	exports map[string]struct{}
	// needsNewline is set when the file is non-empty and its last line has no terminator.
	needsNewline bool
}

// Contains reports whether decl, compared byte for byte, is in the snapshot.
func (s Snapshot) Contains(decl string) bool {
	_, ok := s.exports[decl]
	return ok
}

// Len returns the number of distinct declarations in the snapshot.
func (s Snapshot) Len() int {
	return len(s.exports)
}

// Store reads shell startup files.
type Store struct {
	fs            afero.Fs
	createMissing bool
}

// NewStore returns a Store over fs. With createMissing set, a startup file that does
// not exist is created empty instead of failing with ErrTargetMissing.
func NewStore(fs afero.Fs, createMissing bool) *Store {
	return &Store{fs: fs, createMissing: createMissing}
}

// Read opens path read-only, consumes it fully and releases it, returning the
// export declarations it contains.
func (s *Store) Read(path string) (Snapshot, error) {
	raw, err := afero.ReadFile(s.fs, path)
	if os.IsNotExist(err) && s.createMissing {
		logger.Warn("[WARN] %s does not exist, creating it\n", path)
		if werr := afero.WriteFile(s.fs, path, nil, 0o644); werr != nil {
			return Snapshot{}, errors.Wrapf(werr, errors.ErrConfigUnavailable, "failed to create %s", path)
		}
		raw, err = nil, nil
	}
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, errors.Wrapf(err, errors.ErrTargetMissing, "%s does not exist", path)
		}
		return Snapshot{}, errors.Wrapf(err, errors.ErrConfigUnavailable, "failed to read %s", path)
	}

	snap := Snapshot{
		Path:         path,
		exports:      make(map[string]struct{}),
		needsNewline: len(raw) > 0 && raw[len(raw)-1] != '\n',
	}
	for _, line := range splitLines(raw) {
		if IsExport(line) {
			snap.exports[line] = struct{}{}
		}
	}
	logger.Debug("[DEBUG] %s declares %d exports\n", path, snap.Len())
	return snap, nil
}

// splitLines splits on line terminators (\n or \r\n) without trimming anything else.
func splitLines(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(string(raw), "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
