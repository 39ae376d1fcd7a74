package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/qrscan/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP scan service",
		Long: `Start an HTTP server that scans uploaded images, raw frames and PDFs.

The server provides the following endpoints:
  GET  /health      - Health check with pipeline settings
  POST /scan/image  - Scan an uploaded image (multipart field "image")
  POST /scan/raw    - Scan a raw luminance body (?width=&height=)
  POST /scan/pdf    - Scan the images of an uploaded PDF (multipart field "pdf")
  POST /clean       - Sanitize the request body for JSON
  GET  /ws/scan     - WebSocket frame scanning
  GET  /metrics     - Prometheus metrics

Examples:
  qrscan serve
  qrscan serve --host 0.0.0.0 --port 3000
  qrscan serve --rate-limit --requests-per-minute 120`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srvCfg, err := a.serverConfig(cmd)
			if err != nil {
				return err
			}

			srv, err := server.NewServer(srvCfg)
			if err != nil {
				return fmt.Errorf("failed to initialize server: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			slog.Info("Starting scan server", "host", srvCfg.Host, "port", srvCfg.Port)
			return srv.ListenAndServe(ctx, srvCfg.Addr(), time.Duration(srvCfg.ShutdownTimeout)*time.Second)
		},
	}

	addScanFlags(cmd)
	cmd.Flags().StringP("host", "H", "", "server host (default from config)")
	cmd.Flags().IntP("port", "p", 0, "server port (default from config)")
	cmd.Flags().String("cors-origin", "", "CORS allowed origins (default from config)")
	cmd.Flags().Int("max-upload-size", 0, "maximum upload size in MB (default from config)")
	cmd.Flags().Int("timeout", 0, "request timeout in seconds (default from config)")
	cmd.Flags().Int("shutdown-timeout", 0, "shutdown timeout in seconds (default from config)")
	cmd.Flags().Bool("rate-limit", false, "enable per-client rate limiting (default from config)")
	cmd.Flags().Int("requests-per-minute", 0, "maximum scan requests per minute per client (default from config)")
	cmd.Flags().Int64("max-bytes-per-day", 0, "maximum uploaded bytes per day per client (default from config)")
	return cmd
}

// serverConfig merges the server section of the configuration with flags.
func (a *app) serverConfig(cmd *cobra.Command) (server.Config, error) {
	pc, err := a.pipelineConfig(cmd)
	if err != nil {
		return server.Config{}, err
	}

	sc := a.cfg.Server
	flags := cmd.Flags()
	if flags.Changed("host") {
		sc.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		sc.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("cors-origin") {
		sc.CORSOrigin, _ = flags.GetString("cors-origin")
	}
	if flags.Changed("max-upload-size") {
		sc.MaxUploadMB, _ = flags.GetInt("max-upload-size")
	}
	if flags.Changed("timeout") {
		sc.TimeoutSec, _ = flags.GetInt("timeout")
	}
	if flags.Changed("shutdown-timeout") {
		sc.ShutdownTimeout, _ = flags.GetInt("shutdown-timeout")
	}

	if sc.Port <= 0 || sc.Port > 65535 {
		return server.Config{}, fmt.Errorf("invalid server port: %d", sc.Port)
	}
	if sc.MaxUploadMB <= 0 {
		return server.Config{}, fmt.Errorf("invalid max upload size: %d", sc.MaxUploadMB)
	}

	rl := server.RateLimitConfig{
		Enabled:           sc.RateLimit.Enabled,
		RequestsPerMinute: sc.RateLimit.RequestsPerMinute,
		MaxBytesPerDay:    sc.RateLimit.MaxBytesPerDay,
	}
	if flags.Changed("rate-limit") {
		rl.Enabled, _ = flags.GetBool("rate-limit")
	}
	if flags.Changed("requests-per-minute") {
		rl.RequestsPerMinute, _ = flags.GetInt("requests-per-minute")
	}
	if flags.Changed("max-bytes-per-day") {
		rl.MaxBytesPerDay, _ = flags.GetInt64("max-bytes-per-day")
	}

	return server.Config{
		Host:            sc.Host,
		Port:            sc.Port,
		CORSOrigin:      sc.CORSOrigin,
		MaxUploadMB:     int64(sc.MaxUploadMB),
		TimeoutSec:      sc.TimeoutSec,
		ShutdownTimeout: sc.ShutdownTimeout,
		PipelineConfig:  pc,
		RateLimit:       rl,
	}, nil
}
