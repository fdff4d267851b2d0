package cli

import (
	"net"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/mrz1836/forja/internal/errors"
	"github.com/mrz1836/forja/internal/server"
	"github.com/mrz1836/forja/internal/signal"
)

// AddServeCommand adds the serve command to the root command.
func AddServeCommand(root *cobra.Command) {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the forja HTTP API for a browser UI.

Endpoints:
  POST /v1/instructions   run an instruction
  GET  /v1/files          list project files
  GET  /v1/files/{id}     get one file
  GET  /v1/tasks          list tasks (?limit=N)
  GET  /healthz           liveness
  GET  /metrics           Prometheus metrics

Press Ctrl+C once to shut down gracefully, twice to exit immediately.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h := signal.NewHandler(cmd.Context())
			defer h.Stop()
			ctx := h.Context()
			logger := GetLogger()

			a, err := newApp(ctx, logger, appOptions{})
			if err != nil {
				return err
			}
			defer a.close()

			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			handler := server.New(server.Config{
				Orchestrator: a.orch,
				Store:        a.store,
				Gatherer:     a.registry,
				WaitTimeout:  a.cfg.Server.WaitTimeout,
				Logger:       logger,
			})
			srv := &http.Server{
				Handler:           handler,
				ReadHeaderTimeout: a.cfg.Server.ReadTimeout,
				ReadTimeout:       a.cfg.Server.ReadTimeout,
				WriteTimeout:      a.cfg.Server.WriteTimeout,
			}

			var lc net.ListenConfig
			ln, err := lc.Listen(ctx, "tcp", addr)
			if err != nil {
				return errors.Wrapf(err, "failed to listen on %s", addr)
			}
			return server.Serve(ctx, srv, ln, logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.addr)")
	root.AddCommand(cmd)
}
