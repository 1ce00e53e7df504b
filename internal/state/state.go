package state

import (
	"encoding/json" // For JSON encoding and decoding of the state file
	"os"            // For file system operations like reading and writing files
	"path/filepath"
	"time"

	"setup-ubuntu/internal/errors"
	"setup-ubuntu/internal/logger"
)

// Entry records the outcome of one step or phase of a run.
type Entry struct {
	Phase          string   `json:"phase"`                     // packages, dotfiles or exports
	Label          string   `json:"label"`                     // Step label or phase name
	Status         string   `json:"status"`                    // succeeded, failed, partially failed, skipped
	Detail         string   `json:"detail,omitempty"`          // Success message or failure cause
	FailedPackages []string `json:"failed_packages,omitempty"` // Toolchain packages that did not install
}

// RunRecord is the persisted summary of one provisioning run.
type RunRecord struct {
	ID       string              `json:"id"`
	Started  time.Time           `json:"started"`
	Finished time.Time           `json:"finished"`
	Failed   bool                `json:"failed"`
	Entries  []Entry             `json:"entries"`
	Exports  map[string][]string `json:"exports,omitempty"` // Target name to appended declarations
}

// State holds everything the tool remembers between runs.
type State struct {
	LastRun *RunRecord `json:"last_run,omitempty"`
}

// LoadState loads the saved state from a JSON file at the given path.
// A missing file yields an empty State; a corrupt one is an error.
func LoadState(path string) (*State, error) {
	file, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &State{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrSourceUnavailable, "failed to read state file %s", path)
	}

	var st State
	if err := json.Unmarshal(file, &st); err != nil {
		return nil, errors.Wrapf(err, errors.ErrSourceUnavailable, "failed to parse state file %s", path)
	}
	return &st, nil
}

// SaveState writes the given State to path as indented JSON, creating parent directories.
func SaveState(path string, st *State) error {
	file, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}

	logger.Debug("[DEBUG] Writing state to %s:\n%s\n", path, string(file))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, file, 0644)
}
