package cmd

import (
	"github.com/spf13/cobra"

	"setup-ubuntu/internal/provision"
)

// runCmd provisions everything: packages, dotfiles, then exports.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Install packages, deploy dotfiles and sync exports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPhases(cmd.Context())
	},
}

// syncCmd runs a single phase; without a subcommand it behaves like run.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one provisioning phase (packages, dotfiles, exports)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPhases(cmd.Context())
	},
}

// syncPackagesCmd runs only the install steps.
var syncPackagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "Run only the package install steps",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPhases(cmd.Context(), provision.PhasePackages)
	},
}

// syncDotfilesCmd fetches and places dotfiles only.
var syncDotfilesCmd = &cobra.Command{
	Use:   "dotfiles",
	Short: "Fetch and place dotfiles only",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPhases(cmd.Context(), provision.PhaseDotfiles)
	},
}

// syncExportsCmd appends missing exports to shell startup files only.
var syncExportsCmd = &cobra.Command{
	Use:   "exports",
	Short: "Append missing exports to shell startup files only",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPhases(cmd.Context(), provision.PhaseExports)
	},
}

func init() {
	syncCmd.AddCommand(syncPackagesCmd)
	syncCmd.AddCommand(syncDotfilesCmd)
	syncCmd.AddCommand(syncExportsCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(syncCmd)
}
