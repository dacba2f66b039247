// Package main provides the queue consumer. Two deployment shapes:
//   - pull mode: a long-running loop draining the durable subscription
//     in bounded batches, acknowledging each persisted message;
//   - push mode: an HTTP endpoint receiving one encoded message per
//     request, where the response status is the acknowledgment.
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
	mode := flag.String("mode", "pull", "Consumer mode: pull or push")
	addr := flag.String("addr", ":8081", "HTTP listen address (push mode)")
	metricsAddr := flag.String("metrics-addr", ":9091", "Prometheus metrics HTTP address")
	databaseURL := flag.String("database-url", config.DatabaseURL(), "PostgreSQL connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	natsURL := flag.String("nats-url", config.QueueURL(), "NATS server URL (pull mode)")
	stream := flag.String("stream", config.Stream(), "JetStream stream name")
	subject := flag.String("subject", config.Topic(), "Subject to consume payloads from")
	durable := flag.String("durable", config.Subscription(), "Durable consumer name")
	batchSize := flag.Int("batch-size", 10, "Max messages per pull")
	idleDelay := flag.Duration("idle-delay", 5*time.Second, "Sleep between polls that make no progress")
	ackPermanent := flag.Bool("ack-permanent-failures", false,
		"Acknowledge messages whose failure no redelivery can fix")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[consumer] ", log.LstdFlags|log.Lshortfile)

	if *mode != "pull" && *mode != "push" {
		logger.Fatalf("Unknown mode %q (want pull or push)", *mode)
	}

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

	switch *mode {
	case "pull":
		runPull(ctx, logger, proc, pullOptions{
			natsURL:      *natsURL,
			stream:       *stream,
			subject:      *subject,
			durable:      *durable,
			batchSize:    *batchSize,
			idleDelay:    *idleDelay,
			ackPermanent: *ackPermanent,
		})
	case "push":
		runPush(ctx, logger, proc, *addr)
	}

	logger.Println("Shutdown complete")
}

type pullOptions struct {
	natsURL      string
	stream       string
	subject      string
	durable      string
	batchSize    int
	idleDelay    time.Duration
	ackPermanent bool
}

// runPull drains the durable subscription until ctx is cancelled.
func runPull(ctx context.Context, logger *log.Logger, proc *processor.Processor, opts pullOptions) {
	client, err := queue.Connect(opts.natsURL)
	if err != nil {
		logger.Fatalf("Failed to connect to queue: %v", err)
	}
	defer client.Close()

	if err := client.EnsureStream(opts.stream, opts.subject); err != nil {
		logger.Fatalf("Failed to ensure stream: %v", err)
	}

	source, err := client.PullSubscribe(opts.subject, opts.durable)
	if err != nil {
		logger.Fatalf("Failed to subscribe: %v", err)
	}

	poller := consumer.NewPoller(consumer.Options{
		Source:               source,
		Processor:            proc,
		BatchSize:            opts.batchSize,
		IdleDelay:            opts.idleDelay,
		AckPermanentFailures: opts.ackPermanent,
		Logger:               logger,
	})

	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Poller error: %v", err)
	}
}

// runPush serves one-shot push deliveries until ctx is cancelled.
func runPush(ctx context.Context, logger *log.Logger, proc *processor.Processor, addr string) {
	mux := http.NewServeMux()
	api.NewPushHandler(proc, logger).Register(mux)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Printf("Starting push endpoint on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("HTTP server error: %v", err)
	}
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
