package cli

import (
	"github.com/spf13/cobra"

	"github.com/mlfoundry/modeltrack/internal/server"
)

// serveCommand creates the serve command, running the tracking HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the tracking HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			tracker, closeStore, err := c.newTracker(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			srv := server.New(tracker, c.Logger)
			return srv.ListenAndServe(cmd.Context(), cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}
