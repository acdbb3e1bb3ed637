// Package commands wires the CLI: training runs, policy evaluation,
// batch experiments and the built-in environment server.
package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	configArg string
	debug     bool
)

func GetRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:   "solveragent",
		Short: "Train RL agents to solve symbolic domains",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	rootCommand.PersistentFlags().StringVarP(&configArg, "config", "c", "", "Path to config file, or inline JSON")
	rootCommand.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug messages")
	rootCommand.AddCommand(LearnCommand())
	rootCommand.AddCommand(EvalCommand())
	rootCommand.AddCommand(BatchCommand())
	rootCommand.AddCommand(ServeCommand())
	return rootCommand
}
