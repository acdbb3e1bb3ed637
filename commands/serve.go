package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"solveragent/testenv"
)

func ServeCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the built-in symbolic domains over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := testenv.NewServer()
			slog.Info("serving built-in domains", "port", port)

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start(port)
			}()
			select {
			case <-cmd.Context().Done():
				shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return server.Shutdown(shCtx)
			case err := <-errCh:
				return err
			}
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 9898, "Port to listen on")
	return cmd
}
