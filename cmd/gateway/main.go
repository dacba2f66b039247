// Package main provides the ingest gateway: it accepts telemetry
// payloads over HTTP and publishes them to the queue for asynchronous
// processing, optionally archiving each raw payload first.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telemetry-pipeline/internal/api"
	"telemetry-pipeline/internal/archive"
	"telemetry-pipeline/internal/config"
	"telemetry-pipeline/internal/observability"
	"telemetry-pipeline/internal/queue"
)

func main() {
	// Load .env file if exists
	config.LoadEnvFile()

	// Parse flags (env vars as defaults)
	addr := flag.String("addr", ":8080", "HTTP listen address")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address")
	natsURL := flag.String("nats-url", config.QueueURL(), "NATS server URL")
	stream := flag.String("stream", config.Stream(), "JetStream stream name")
	subject := flag.String("subject", config.Topic(), "Subject to publish payloads to")
	archiveRoot := flag.String("archive-root", config.ArchiveRoot(),
		"Root directory for raw payload archives (empty disables archiving)")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[gateway] ", log.LstdFlags|log.Lshortfile)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := queue.Connect(*natsURL)
	if err != nil {
		logger.Fatalf("Failed to connect to queue: %v", err)
	}
	defer client.Close()

	if err := client.EnsureStream(*stream, *subject); err != nil {
		logger.Fatalf("Failed to ensure stream: %v", err)
	}

	var archiver archive.Archiver
	if *archiveRoot != "" {
		archiver = archive.NewDirArchiver(*archiveRoot)
		logger.Printf("Archiving raw payloads under %s/data/", *archiveRoot)
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		}
	}()

	// Start metrics server
	go startMetricsServer(logger, *metricsAddr)

	// Serve ingress
	mux := http.NewServeMux()
	api.NewGatewayHandler(client.Publisher(*subject), archiver, logger).Register(mux)

	srv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Printf("Starting HTTP server on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("HTTP server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// startMetricsServer serves /metrics and /health.
func startMetricsServer(logger *log.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/health", api.HandleHealth)

	logger.Printf("Starting metrics server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Printf("Metrics server error: %v", err)
	}
}
