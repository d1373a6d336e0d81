package cmd

import (
	"log"

	"github.com/josephlewis42/rush/core/config"
	"github.com/spf13/cobra"
)

// initCmd writes the default configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to the config path.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		logger := log.New(cmd.ErrOrStderr(), "", 0)

		cfg, err := config.Initialize(cfgPath, logger)
		if err != nil {
			return err
		}
		if cfg.EventLogPath() == "" {
			logger.Println("Event logging is off, set event_log to turn it on.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
