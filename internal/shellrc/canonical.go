package shellrc

import (
	"github.com/spf13/afero"

	"setup-ubuntu/internal/errors"
)

// LoadCanonical reads the canonical export list. Only lines that are export
// declarations are kept, in file order; everything else is ignored.
func LoadCanonical(fs afero.Fs, path string) ([]string, error) {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrSourceUnavailable, "failed to open canonical export list %s", path)
	}

	var decls []string
	for _, line := range splitLines(raw) {
		if IsExport(line) {
			decls = append(decls, line)
		}
	}
	return decls, nil
}
