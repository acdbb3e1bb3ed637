package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"solveragent/runner"
)

func BatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "batch",
		Short: "Run a batch of experiments with multiple agents and domains",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg runner.BatchConfig
			if err := runner.LoadConfig(configArg, &cfg); err != nil {
				return err
			}
			return runner.RunBatchExperiment(cmd.Context(), cfg, slog.Default())
		},
	}
}
