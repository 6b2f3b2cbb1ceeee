// Package cli implements minutesctl, the offline tool that replays recorded
// meetings through the transcript engine.
package cli

import (
	"time"

	"github.com/spf13/cobra"

	"voice-minutes-service/internal/observability/logging"
)

// NewRootCmd creates the minutesctl root command.
func NewRootCmd() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "minutesctl",
		Short:         "Replay meetings and print minutes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logging.Init(logging.Config{
				Level:      logLevel,
				Format:     "console",
				TimeFormat: time.RFC3339,
				Output:     cmd.ErrOrStderr(),
			})
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	rootCmd.AddCommand(NewReplayCmd())

	return rootCmd
}
