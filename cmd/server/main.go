// Package main provides the ingest server: it accepts telemetry
// payloads over HTTP, processes them synchronously into the record
// store, and can optionally run the queue poller in the background so
// one process serves both ingress paths.
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
	"telemetry-pipeline/internal/config"
	"telemetry-pipeline/internal/consumer"
	"telemetry-pipeline/internal/observability"
	"telemetry-pipeline/internal/processor"
	"telemetry-pipeline/internal/queue"
	"telemetry-pipeline/internal/storage"
	"telemetry-pipeline/internal/storage/memory"
	"telemetry-pipeline/internal/storage/migrations"
	pgstore "telemetry-pipeline/internal/storage/postgres"
)

func main() {
	// Load .env file if exists
	config.LoadEnvFile()

	// Parse flags (env vars as defaults)
	addr := flag.String("addr", ":8080", "HTTP listen address")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address")
	databaseURL := flag.String("database-url", config.DatabaseURL(), "PostgreSQL connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	withConsumer := flag.Bool("with-consumer", false, "Run the queue poller in this process")
	natsURL := flag.String("nats-url", config.QueueURL(), "NATS server URL")
	stream := flag.String("stream", config.Stream(), "JetStream stream name")
	subject := flag.String("subject", config.Topic(), "Subject to consume payloads from")
	durable := flag.String("durable", config.Subscription(), "Durable consumer name")
	batchSize := flag.Int("batch-size", 10, "Max messages per pull")
	idleDelay := flag.Duration("idle-delay", 5*time.Second, "Sleep between polls that make no progress")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create store
	store, cleanup, err := createStore(ctx, *databaseURL, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create store: %v", err)
	}
	defer cleanup()

	proc := processor.New(store)

	// Channel to signal completion
	done := make(chan struct{})

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	// Start metrics server
	go startMetricsServer(logger, *metricsAddr)

	// Optionally start the embedded consumer after the store is ready
	if *withConsumer {
		client, err := queue.Connect(*natsURL)
		if err != nil {
			logger.Fatalf("Failed to connect to queue: %v", err)
		}
		defer client.Close()

		if err := client.EnsureStream(*stream, *subject); err != nil {
			logger.Fatalf("Failed to ensure stream: %v", err)
		}

		source, err := client.PullSubscribe(*subject, *durable)
		if err != nil {
			logger.Fatalf("Failed to subscribe: %v", err)
		}

		poller := consumer.NewPoller(consumer.Options{
			Source:    source,
			Processor: proc,
			BatchSize: *batchSize,
			IdleDelay: *idleDelay,
			Logger:    log.New(os.Stdout, "[consumer] ", log.LstdFlags|log.Lshortfile),
		})
		go func() {
			if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Printf("Poller error: %v", err)
			}
		}()
	}

	// Serve ingress
	mux := http.NewServeMux()
	api.NewHandler(proc, logger).Register(mux)

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

	close(done)
	logger.Println("Shutdown complete")
}

// createStore creates the record store and its cleanup function.
func createStore(ctx context.Context, databaseURL string, useMemory bool) (storage.ProcessedRecordStore, func(), error) {
	if useMemory {
		return memory.NewProcessedRecordStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, databaseURL)
	if err != nil {
		return nil, nil, err
	}

	// Create the table if absent
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}

	return pgstore.NewProcessedRecordStore(pool), pool.Close, nil
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
