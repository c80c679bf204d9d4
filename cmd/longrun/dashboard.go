package main

import (
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gorewood/longrun/internal/dashboard"
)

// newDashboardCmd creates the dashboard command.
func newDashboardCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Serve a read-only JSON view of tracked features over HTTP",
		Long: `Serve the project's tracking directories over HTTP until interrupted.

Routes:
  GET /healthz                       liveness
  GET /features                      status of every feature
  GET /features/{feature}            status of one feature
  GET /features/{feature}/progress   raw progress log

Examples:
  longrun dashboard
  longrun dashboard --addr 127.0.0.1:9000 -C ~/src/shop`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printer := newPrinter(cmd)

			env, err := loadCurrentProject(cmd)
			if err != nil {
				printer.Error(err)
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := dashboard.New(env.layout, env.logger)
			err = server.ListenAndServe(ctx, addr, func(bound net.Addr) {
				if printer.IsJSON() {
					_ = printer.WriteJSON(map[string]any{"status": "listening", "addr": bound.String()})
					return
				}
				printer.Print("Serving %s on http://%s (Ctrl-C to stop)\n", env.layout.Root(), bound)
			})
			if err != nil {
				printer.Error(err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", dashboard.DefaultAddr, "Listen address")
	return cmd
}
