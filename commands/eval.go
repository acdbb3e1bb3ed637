package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"solveragent/runner"
)

func EvalCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "eval",
		Short: "Evaluate a learned policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg runner.EvalPolicyConfig
			if err := runner.LoadConfig(configArg, &cfg); err != nil {
				return err
			}
			_, err := runner.EvaluatePolicy(cmd.Context(), cfg, slog.Default())
			return err
		},
	}
}
