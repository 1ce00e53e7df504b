package cmd

import (
	"github.com/spf13/cobra"

	"setup-ubuntu/internal/logger"
	"setup-ubuntu/internal/provision"
	"setup-ubuntu/internal/state"
)

// reportPath overrides the report file from the configuration.
var reportPath string

// reportCmd prints the report persisted by the last run.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the outcome of the last run",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := reportPath
		if path == "" {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			path = cfg.ReportFile
		}

		st, err := state.LoadState(path)
		if err != nil {
			return err
		}
		if st.LastRun == nil {
			logger.Warn("[WARN] No run recorded in %s\n", path)
			return nil
		}
		provision.PrintRecord(st.LastRun)
		if st.LastRun.Failed {
			return &exitError{code: ExitFailure}
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportPath, "file", "", "Report file to read (default from configuration)")
	rootCmd.AddCommand(reportCmd)
}
