package config

import "time"

// Step types accepted in the `steps` list.
const (
	StepApt       = "apt"       // one batched package-manager invocation for the whole list
	StepToolchain = "toolchain" // one installer invocation per package (cargo-style)
	StepScript    = "script"    // a single command with no package list
)

// Step describes one provisioning step as written in the YAML file.
//   - Label: Human-readable name shown in headings and in the final summary.
//   - Type: One of apt, toolchain, script.
//   - List: Newline-delimited package list file (apt and toolchain only).
//   - Command/Args: Program and leading arguments. For apt they default to `apt install -y`;
//     setting Args replaces `install -y` entirely. The packages are appended after Args,
//     all at once for apt and one per invocation for toolchain (e.g. `cargo install <name>`).
//   - Sudo: Prefix the command with sudo.
//   - Timeout: Optional upper bound for each subprocess of this step (e.g. "10m").
type Step struct {
	Label   string   `yaml:"label"`
	Type    string   `yaml:"type"`
	List    string   `yaml:"list,omitempty"`
	Command string   `yaml:"command,omitempty"`
	Args    []string `yaml:"args,omitempty"`
	Sudo    bool     `yaml:"sudo,omitempty"`
	Timeout Duration `yaml:"timeout,omitempty"`
}

// Dotfiles configures where the personal configuration tree comes from.
// - Source: git remote or archive (local path or http(s) URL).
// - Branch: Optional branch for git sources.
// - StagingDir: Where the tree is fetched before mirroring; defaults to a temp dir.
// - Skip: Disable the dotfiles phase entirely.
type Dotfiles struct {
	Source     string `yaml:"source"`
	Branch     string `yaml:"branch,omitempty"`
	StagingDir string `yaml:"staging_dir,omitempty"`
	Skip       bool   `yaml:"skip,omitempty"`
}

// Target is one shell startup file that receives the canonical exports.
type Target struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// Exports configures the export sync phase.
// - File: The canonical export list.
// - Targets: Shell startup files, processed in order.
// - CreateMissing: Create a missing target empty instead of failing the phase.
type Exports struct {
	File          string   `yaml:"file"`
	Targets       []Target `yaml:"targets"`
	CreateMissing bool     `yaml:"create_missing,omitempty"`
}

// Config is the top-level structure returned after loading the YAML configuration.
type Config struct {
	Home       string   `yaml:"home,omitempty"`
	ReportFile string   `yaml:"report_file,omitempty"`
	Steps      []Step   `yaml:"steps"`
	Dotfiles   Dotfiles `yaml:"dotfiles"`
	Exports    Exports  `yaml:"exports"`
}

// Duration is a time.Duration that unmarshals from strings such as "90s" or "10m".
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration in Go notation.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}
