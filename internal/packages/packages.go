// Package packages loads newline-delimited package lists.
package packages

import (
	"bufio"
	"strings"

	"github.com/spf13/afero"

	"setup-ubuntu/internal/errors"
	"setup-ubuntu/internal/logger"
)

// Load reads the package list at path and returns its entries in file order.
// Each line is trimmed and blank lines are dropped, so every returned name is
// non-empty and carries no surrounding whitespace. Comments are not supported.
//
// An unreadable list fails with ErrSourceUnavailable: a list is mandatory input
// for the step that names it.
func Load(fs afero.Fs, path string) ([]string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrSourceUnavailable, "failed to open package list %s", path)
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrSourceUnavailable, "failed to read package list %s", path)
	}

	logger.Debug("[DEBUG] Loaded %d packages from %s\n", len(names), path)
	return names, nil
}
