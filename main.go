package main

import (
	"os"

	"setup-ubuntu/cmd" // CLI commands and execution logic
)

// main is the program entry point.
// It delegates to cmd.Execute() and exits with the code it returns.
//
// setup-ubuntu provisions a freshly installed Ubuntu machine:
//   - Runs an ordered list of install steps: apt update, one batched `apt install`,
//     arbitrary scripts (oh-my-zsh) and per-package toolchain installs (`cargo install`)
//   - Clones a dotfiles repository (or extracts an archive) and mirrors it into $HOME,
//     leaving version-control metadata behind
//   - Appends the export declarations missing from ~/.zshrc and ~/.bashrc, never
//     touching lines that are already there
//   - Records the outcome of every step in a JSON report that `setup-ubuntu report` prints
//
// Error handling strategy:
//   - A failing step is logged and recorded and the next step still runs
//   - The process exits 1 when any step or phase failed and 2 when the configuration is unusable
func main() {
	os.Exit(cmd.Execute())
}
