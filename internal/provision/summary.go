package provision

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"setup-ubuntu/internal/dotfiles"
	"setup-ubuntu/internal/installer"
	"setup-ubuntu/internal/logger"
	"setup-ubuntu/internal/shellrc"
	"setup-ubuntu/internal/state"
)

func formatDeploy(res dotfiles.Result) string {
	return fmt.Sprintf("placed %d files, %d directories and %d links from %s (skipped %d)",
		res.Files, res.Dirs, res.Symlinks, res.Source, res.Skipped)
}

func formatExports(results []shellrc.TargetResult) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, fmt.Sprintf("%s: %d added, %d present", r.ID, len(r.Added), len(r.Unchanged)))
	}
	return strings.Join(parts, "; ")
}

// PrintSummary prints one line per step and phase, failures first in red.
func PrintSummary(r RunReport) {
	logger.Banner("Summary\n")
	for _, s := range r.Steps {
		printLine(s.Label, s.Status, s.Message)
		if len(s.FailedPackages) > 0 {
			logger.Error("    failed packages: %s\n", strings.Join(s.FailedPackages, ", "))
		}
	}
	for _, p := range r.Phases {
		printLine(string(p.Phase), p.Status, p.Detail)
	}

	if r.Failed() {
		logger.Error("[ERROR] Finished with failures in %s\n", r.Finished.Sub(r.Started).Round(time.Millisecond))
		return
	}
	logger.Banner("Finished in %s\n", r.Finished.Sub(r.Started).Round(time.Millisecond))
}

func printLine(label string, status installer.Status, detail string) {
	switch status {
	case installer.StatusSucceeded:
		logger.Info("  %-40s %s\n", label, detail)
	case StatusSkipped:
		logger.Warn("  %-40s skipped: %s\n", label, detail)
	default:
		logger.Error("  %-40s %s: %s\n", label, status, detail)
	}
}

// Record converts a report into the form persisted between runs.
func Record(r RunReport) *state.RunRecord {
	rec := &state.RunRecord{
		ID:       uuid.NewString(),
		Started:  r.Started,
		Finished: r.Finished,
		Failed:   r.Failed(),
	}
	for _, s := range r.Steps {
		rec.Entries = append(rec.Entries, state.Entry{
			Phase:          string(PhasePackages),
			Label:          s.Label,
			Status:         string(s.Status),
			Detail:         s.Message,
			FailedPackages: s.FailedPackages,
		})
	}
	for _, p := range r.Phases {
		rec.Entries = append(rec.Entries, state.Entry{
			Phase:  string(p.Phase),
			Label:  string(p.Phase),
			Status: string(p.Status),
			Detail: p.Detail,
		})
	}
	for _, e := range r.Exports {
		if len(e.Added) == 0 {
			continue
		}
		if rec.Exports == nil {
			rec.Exports = make(map[string][]string)
		}
		rec.Exports[e.ID] = e.Added
	}
	return rec
}

// Save stores the report as the last run in the state file at path.
func Save(path string, r RunReport) error {
	st, err := state.LoadState(path)
	if err != nil {
		// A corrupt state file is replaced rather than blocking the run.
		logger.Warn("[WARN] %v, overwriting\n", err)
		st = &state.State{}
	}
	st.LastRun = Record(r)
	return state.SaveState(path, st)
}

// PrintRecord prints a persisted run the same way PrintSummary prints a live one.
func PrintRecord(rec *state.RunRecord) {
	logger.Banner("Last run %s at %s (%s)\n", rec.ID, rec.Started.Format("2006-01-02 15:04:05"), rec.Finished.Sub(rec.Started).Round(time.Millisecond))
	for _, e := range rec.Entries {
		printLine(e.Label, installer.Status(e.Status), e.Detail)
		if len(e.FailedPackages) > 0 {
			logger.Error("    failed packages: %s\n", strings.Join(e.FailedPackages, ", "))
		}
	}
	ids := make([]string, 0, len(rec.Exports))
	for id := range rec.Exports {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		lines := rec.Exports[id]
		logger.Info("  %s: appended %d export(s)\n", id, len(lines))
		for _, l := range lines {
			logger.Added("    %s\n", l)
		}
	}
}
