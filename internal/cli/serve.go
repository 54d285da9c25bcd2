package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raysh454/favicond/internal/logging"
	"github.com/raysh454/favicond/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket API",
		Long: `Serve the batch API:

  POST /favicons           zip archive of the found favicons
  POST /favicons/json      per-site outcomes
  POST /favicons/datauri   per-site data URIs
  GET  /favicons/{site}    one favicon
  GET  /ws/favicons        streamed outcomes
  GET  /metrics            Prometheus metrics
  GET  /swagger/           API documentation`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, o)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default from config, :3000)")
	return cmd
}

func runServe(cmd *cobra.Command, o *options) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.ListenAddr = addr
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger := newLogger(cfg, "server")
	a, err := newApplication(cfg, logger, o)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("closing application", logging.Field{Key: "error", Value: err.Error()})
		}
	}()

	srv, err := server.NewServer(server.Config{App: a, Logger: logger})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}
