// ABOUTME: CLI command for serving the JSON HTTP API.
// ABOUTME: Runs until SIGINT/SIGTERM, then shuts down gracefully.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/harperreed/healthtrends/internal/api"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Serve health logs and trend series over HTTP.

ENDPOINTS:

  GET    /health                  Liveness check
  GET    /api/health-logs         Raw per-day records (?user_id, ?start, ?end)
  GET    /api/logs?date=          One day's log
  POST   /api/logs                Record or replace a day
  DELETE /api/logs?date=          Delete a day
  GET    /api/trends              Trend series (?resolution, ?metrics, ?start, ?end)

Dates are YYYY-MM-DD. The listen address defaults to the configured
listen_addr (127.0.0.1:5001).

EXAMPLES:

  healthtrends serve
  healthtrends serve --addr :8080
  curl 'localhost:5001/api/trends?resolution=monthly&metrics=sleep,mood'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.GetListenAddr()
		if serveAddr != "" {
			addr = serveAddr
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		server := api.NewServer(repo, newNormalizer(), cfg.GetUserID(), logger.Named("api"))
		return server.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}
