package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/btraven00/phishq/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scoring API over HTTP",
	Long: `Serve exposes the detector as a JSON API:

  GET  /healthz      liveness probe
  GET  /v1/checks    check catalog and active reference lists
  POST /v1/score     {"url": "...", "screen": true}
  POST /v1/batch     {"urls": ["...", "..."]}
  POST /v1/extract   {"text": "...", "html": false, "score": true}

The server shuts down gracefully on SIGINT or SIGTERM.

Examples:
  phishq serve
  phishq serve --addr 127.0.0.1:9090 --log-format json`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := appConfig.Server

	s := server.New(newDetector(), server.Config{
		Addr:            cfg.Addr,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
		MaxBatch:        cfg.MaxBatch,
		MaxBodyBytes:    cfg.MaxBodyBytes,
		Workers:         appConfig.Workers,
	}, logger)

	return s.ListenAndServe(cmd.Context())
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "listen address")
	cobra.CheckErr(viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr")))
}
