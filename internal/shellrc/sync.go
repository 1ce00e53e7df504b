package shellrc

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"setup-ubuntu/internal/errors"
	"setup-ubuntu/internal/logger"
)

// Target names one startup file, e.g. {"zsh", "/home/me/.zshrc"}.
type Target struct {
	ID   string
	Path string
}

// TargetResult reports what a sync pass did to one target.
type TargetResult struct {
	ID        string
	Path      string
	Added     []string
	Unchanged []string
}

// Plan decides, for one target, which canonical declarations to append and which
// are already present. Both lists follow canonical order. A declaration repeated in
// canonical is appended at most once.
func Plan(canonical []string, snap Snapshot) (added, unchanged []string) {
	planned := make(map[string]struct{})
	for _, decl := range canonical {
		if snap.Contains(decl) {
			unchanged = append(unchanged, decl)
			continue
		}
		if _, dup := planned[decl]; dup {
			continue
		}
		planned[decl] = struct{}{}
		added = append(added, decl)
	}
	return added, unchanged
}

// Engine appends missing export declarations to startup files.
type Engine struct {
	fs    afero.Fs
	store *Store
}

// NewEngine returns an Engine writing through fs and reading through store.
func NewEngine(fs afero.Fs, store *Store) *Engine {
	return &Engine{fs: fs, store: store}
}

// Sync reads a snapshot of every target, then appends to each target the canonical
// declarations its own snapshot lacks. Distinct files never influence each other;
// targets naming the same file share one snapshot, so a line lands there once. Existing
// lines are never rewritten, reordered or removed, so a second run with the same
// input appends nothing.
//
// Any target that cannot be read or opened for appending aborts the pass. Results
// for targets already written are returned alongside the error.
func (e *Engine) Sync(canonical []string, targets []Target) ([]TargetResult, error) {
	snapshots := make(map[string]Snapshot, len(targets))
	for _, t := range targets {
		key := filepath.Clean(t.Path)
		if _, ok := snapshots[key]; ok {
			continue
		}
		snap, err := e.store.Read(t.Path)
		if err != nil {
			return nil, err
		}
		snapshots[key] = snap
	}

	results := make([]TargetResult, 0, len(targets))
	for _, t := range targets {
		key := filepath.Clean(t.Path)
		snap := snapshots[key]
		added, unchanged := Plan(canonical, snap)
		name := filepath.Base(t.Path)
		for _, decl := range unchanged {
			logger.Unchanged("%s %s\n", name, decl)
		}
		for _, decl := range added {
			logger.Added("%s %s\n", name, decl)
		}

		if err := e.appendLines(t.Path, added, snap.needsNewline); err != nil {
			return results, err
		}
		// Later targets naming the same file see what was just appended.
		snapshots[key] = snap.with(added)
		results = append(results, TargetResult{ID: t.ID, Path: t.Path, Added: added, Unchanged: unchanged})
	}
	return results, nil
}

// appendLines writes lines to the end of path through one append handle. When the
// file's last line lacks a terminator one is written first so that line stays intact.
func (e *Engine) appendLines(path string, lines []string, needsNewline bool) error {
	if len(lines) == 0 {
		logger.Debug("[DEBUG] %s is up to date\n", path)
		return nil
	}

	f, err := e.fs.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, errors.ErrConfigUnavailable, "unable to open %s for appending", path)
	}

	var b strings.Builder
	if needsNewline {
		b.WriteString("\n")
	}
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if _, err := f.WriteString(b.String()); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, errors.ErrConfigUnavailable, "failed to append to %s", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrConfigUnavailable, "failed to close %s", path)
	}
	logger.Debug("[DEBUG] Appended %d exports to %s\n", len(lines), path)
	return nil
}

// with returns a copy of s that also contains decls, as the file reads after they
// were appended.
func (s Snapshot) with(decls []string) Snapshot {
	if len(decls) == 0 {
		return s
	}
	next := Snapshot{Path: s.Path, exports: make(map[string]struct{}, len(s.exports)+len(decls))}
	for decl := range s.exports {
		next.exports[decl] = struct{}{}
	}
	for _, decl := range decls {
		next.exports[decl] = struct{}{}
	}
	return next
}

// Appended maps each target ID to the declarations appended to it.
func Appended(results []TargetResult) map[string][]string {
	out := make(map[string][]string, len(results))
	for _, r := range results {
		out[r.ID] = r.Added
	}
	return out
}
