package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/geuryroustand/nail-design-try-on/internal/server"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for the try-on API",
	Long: `Start an HTTP server that provides REST and WebSocket endpoints for
nail-design extraction and try-on.

The server provides the following endpoints:
  POST /v1/extract - Extract designs from an uploaded source photo
  POST /v1/tryon   - Full try-on with source and target photos
  GET  /ws/tryon   - Interactive try-on session over WebSocket
  GET  /health     - Health check endpoint
  GET  /models     - List available landmark models
  GET  /metrics    - Prometheus metrics

Examples:
  nailtry serve
  nailtry serve --port 8080
  nailtry serve --host 0.0.0.0 --port 3000 --rate-limit-enabled`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	host := cfg.Server.Host
	if cmd.Flags().Changed("host") {
		host, _ = cmd.Flags().GetString("host")
	}
	port := cfg.Server.Port
	if cmd.Flags().Changed("port") {
		port, _ = cmd.Flags().GetInt("port")
	}
	corsOrigin := cfg.Server.CORSOrigin
	if cmd.Flags().Changed("cors-origin") {
		corsOrigin, _ = cmd.Flags().GetString("cors-origin")
	}
	maxUploadMB := cfg.Server.MaxUploadMB
	if cmd.Flags().Changed("max-upload-size") {
		maxUploadMB, _ = cmd.Flags().GetInt("max-upload-size")
	}
	timeout := cfg.Server.TimeoutSec
	if cmd.Flags().Changed("timeout") {
		timeout, _ = cmd.Flags().GetInt("timeout")
	}
	shutdownTimeout := cfg.Server.ShutdownTimeout
	if cmd.Flags().Changed("shutdown-timeout") {
		shutdownTimeout, _ = cmd.Flags().GetInt("shutdown-timeout")
	}

	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", port)
	}

	pCfg := cfg.ToPipelineConfig()
	if cmd.Flags().Changed("model-path") {
		pCfg.Hand.ModelPath, _ = cmd.Flags().GetString("model-path")
	}
	if cmd.Flags().Changed("opacity") {
		pCfg.Compositing.Opacity, _ = cmd.Flags().GetFloat64("opacity")
	}
	if cmd.Flags().Changed("min-quality") {
		q, _ := cmd.Flags().GetFloat64("min-quality")
		pCfg.Extraction.MinQuality = q
		pCfg.ExtractionGeometry.MinQuality = q
	}

	serverConfig := server.Config{
		Host:           host,
		Port:           port,
		CORSOrigin:     corsOrigin,
		MaxUploadMB:    int64(maxUploadMB),
		TimeoutSec:     timeout,
		PipelineConfig: pCfg,
	}

	if enabled, _ := cmd.Flags().GetBool("rate-limit-enabled"); enabled {
		serverConfig.RequestsPerMinute, _ = cmd.Flags().GetInt("requests-per-minute")
		serverConfig.RequestsPerHour, _ = cmd.Flags().GetInt("requests-per-hour")
		serverConfig.MaxRequestsPerDay, _ = cmd.Flags().GetInt("max-requests-per-day")
		serverConfig.MaxDataPerDay, _ = cmd.Flags().GetInt64("max-data-per-day")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tryonServer, err := server.NewServer(serverConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}
	defer func() { _ = tryonServer.Close() }()

	mux := http.NewServeMux()
	tryonServer.SetupRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", host, port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(timeout) * time.Second,
		WriteTimeout:      time.Duration(timeout) * time.Second,
	}

	go func() {
		slog.Info("Starting try-on server", "host", host, "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		slog.Info("Context cancelled, initiating shutdown")
	}

	slog.Info("Starting graceful shutdown", "timeout", fmt.Sprintf("%ds", shutdownTimeout))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		time.Duration(shutdownTimeout)*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}
	if err := tryonServer.Close(); err != nil {
		slog.Error("Server cleanup error", "error", err)
	}

	slog.Info("Graceful shutdown completed")
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("host", "H", "localhost", "server host")
	serveCmd.Flags().IntP("port", "p", 8080, "server port")
	serveCmd.Flags().String("cors-origin", "*", "CORS allowed origins")
	serveCmd.Flags().Int("max-upload-size", 10, "maximum upload size in MB per file")
	serveCmd.Flags().Int("timeout", 30, "request timeout in seconds")
	serveCmd.Flags().Int("shutdown-timeout", 10, "shutdown timeout in seconds")
	serveCmd.Flags().String("model-path", "", "override hand landmark model path")
	serveCmd.Flags().Float64("opacity", 0.85, "design blend opacity (0..1)")
	serveCmd.Flags().Float64("min-quality", 0.3, "extraction quality floor (0..1)")
	serveCmd.Flags().Bool("rate-limit-enabled", false, "enable rate limiting")
	serveCmd.Flags().Int("requests-per-minute", 60, "maximum requests per minute per client")
	serveCmd.Flags().Int("requests-per-hour", 1000, "maximum requests per hour per client")
	serveCmd.Flags().Int("max-requests-per-day", 5000, "maximum requests per day per client")
	serveCmd.Flags().Int64("max-data-per-day", 100*1024*1024, "maximum data processed per day per client (bytes)")
}
