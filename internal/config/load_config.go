package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"setup-ubuntu/internal/errors"
)

// DefaultConfigFile is looked up in the working directory when no --config flag is given.
const DefaultConfigFile = "setup.yaml"

// AppName names the state directory and the dotfiles staging directory.
const AppName = "setup-ubuntu"

const ohMyZshInstaller = "https://raw.githubusercontent.com/ohmyzsh/ohmyzsh/master/tools/install.sh"

// Default returns the built-in configuration: update apt, install the apt list,
// install oh-my-zsh, install the cargo list, deploy the dotfiles repository and
// sync ./exports into ~/.zshrc and ~/.bashrc.
func Default() Config {
	return Config{
		Steps: []Step{
			{Label: "Updating apt", Type: StepScript, Command: "apt", Args: []string{"update"}, Sudo: true},
			{Label: "Installing apt apps", Type: StepApt, List: "apt_apps", Sudo: true},
			{Label: "Installing oh my zsh", Type: StepScript, Command: "sh",
				Args: []string{"-c", "curl -fsSL " + ohMyZshInstaller + " | sh -s -- --unattended"}},
			{Label: "Installing cargo apps", Type: StepToolchain, List: "cargo_apps", Command: "cargo", Args: []string{"install"}},
		},
		Dotfiles: Dotfiles{Source: "https://github.com/Anav0/dotfiles"},
		Exports: Exports{
			File: "exports",
			Targets: []Target{
				{Name: "zsh", Path: ".zshrc"},
				{Name: "bash", Path: ".bashrc"},
			},
		},
	}
}

// LoadConfig reads the YAML configuration at configFile and returns it with every
// relative path resolved and defaults applied.
//
// When configFile is empty, DefaultConfigFile is tried in the working directory and
// the built-in defaults are used if it does not exist. An explicitly named file that
// cannot be read is an error.
func LoadConfig(configFile string) (Config, error) {
	explicit := configFile != ""
	if !explicit {
		configFile = DefaultConfigFile
	}

	raw, err := os.ReadFile(configFile)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			cfg := Default()
			if err := cfg.finalize("."); err != nil {
				return Config{}, err
			}
			return cfg, nil
		}
		return Config{}, errors.Wrapf(err, errors.ErrInvalidConfig, "failed to read %s", configFile)
	}

	cfg, err := Parse(raw)
	if err != nil {
		return Config{}, errors.Wrapf(err, errors.ErrInvalidConfig, "failed to unmarshal %s", configFile)
	}
	if err := cfg.finalize(filepath.Dir(configFile)); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes YAML bytes. Sections left out of the document keep their defaults,
// so a file containing only `steps:` still deploys dotfiles and syncs exports.
func Parse(raw []byte) (Config, error) {
	cfg := Default()
	// yaml.v3 replaces slices wholesale, so a document that sets steps or targets
	// drops the defaults for that list.
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// finalize validates the configuration and resolves paths: list and export files
// against baseDir, targets against Home.
func (c *Config) finalize(baseDir string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	if c.Home == "" || c.Home == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return errors.Wrap(err, errors.ErrInvalidConfig, "cannot determine home directory")
		}
		c.Home = home
	}

	if c.ReportFile == "" {
		c.ReportFile = filepath.Join(xdg.StateHome, AppName, "last-run.json")
	}

	for i := range c.Steps {
		if c.Steps[i].List != "" {
			c.Steps[i].List = resolve(baseDir, expandHome(c.Steps[i].List, c.Home))
		}
	}
	if c.Exports.File != "" {
		c.Exports.File = resolve(baseDir, expandHome(c.Exports.File, c.Home))
	}
	for i := range c.Exports.Targets {
		c.Exports.Targets[i].Path = resolve(c.Home, expandHome(c.Exports.Targets[i].Path, c.Home))
	}
	if err := c.checkTargetPaths(); err != nil {
		return err
	}
	if c.Dotfiles.Source != "" && !isRemote(c.Dotfiles.Source) {
		c.Dotfiles.Source = resolve(baseDir, expandHome(c.Dotfiles.Source, c.Home))
	}
	if c.Dotfiles.StagingDir == "" {
		c.Dotfiles.StagingDir = filepath.Join(os.TempDir(), AppName+"-dotfiles")
	}
	return nil
}

// Validate checks step types and the fields each type requires.
func (c Config) Validate() error {
	for i, s := range c.Steps {
		name := s.Label
		if name == "" {
			name = fmt.Sprintf("#%d", i+1)
		}
		switch s.Type {
		case StepApt:
			if s.List == "" {
				return errors.Newf(errors.ErrInvalidConfig, "step %s: apt step needs a list", name)
			}
		case StepToolchain:
			if s.List == "" || s.Command == "" {
				return errors.Newf(errors.ErrInvalidConfig, "step %s: toolchain step needs a list and a command", name)
			}
		case StepScript:
			if s.Command == "" {
				return errors.Newf(errors.ErrInvalidConfig, "step %s: script step needs a command", name)
			}
		default:
			return errors.Newf(errors.ErrInvalidConfig, "step %s: unknown step type %q", name, s.Type)
		}
	}

	seen := make(map[string]bool)
	for _, t := range c.Exports.Targets {
		if t.Name == "" || t.Path == "" {
			return errors.New(errors.ErrInvalidConfig, "export targets need a name and a path")
		}
		if seen[t.Name] {
			return errors.Newf(errors.ErrInvalidConfig, "duplicate export target %q", t.Name)
		}
		seen[t.Name] = true
	}
	if len(c.Exports.Targets) > 0 && c.Exports.File == "" {
		return errors.New(errors.ErrInvalidConfig, "exports.file is required when targets are configured")
	}
	return nil
}

// checkTargetPaths rejects two export targets that resolve to the same file.
func (c Config) checkTargetPaths() error {
	owner := make(map[string]string)
	for _, t := range c.Exports.Targets {
		p := filepath.Clean(t.Path)
		if prev, dup := owner[p]; dup {
			return errors.Newf(errors.ErrInvalidConfig, "export targets %q and %q both point at %s", prev, t.Name, p)
		}
		owner[p] = t.Name
	}
	return nil
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

func expandHome(p, home string) string {
	if p == "~" {
		return home
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(home, p[2:])
	}
	return p
}

// isRemote reports whether source is fetched over the network rather than read locally.
func isRemote(source string) bool {
	for _, prefix := range []string{"http://", "https://", "ssh://", "git://", "git@"} {
		if strings.HasPrefix(source, prefix) {
			return true
		}
	}
	return false
}
