package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"solveragent/runner"
)

func LearnCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "learn",
		Short: "Put an agent to learn from an environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg runner.RunConfig
			if err := runner.LoadConfig(configArg, &cfg); err != nil {
				return err
			}
			return runner.RunAgentExperiment(cmd.Context(), cfg, slog.Default())
		},
	}
}
