// Package consumer drains the telemetry queue in the background.
package consumer

import (
	"context"
	"log"
	"time"

	"telemetry-pipeline/internal/observability"
	"telemetry-pipeline/internal/processor"
	"telemetry-pipeline/internal/queue"
)

const (
	defaultBatchSize = 10
	defaultIdleDelay = 5 * time.Second
)

// Source provides batches of undelivered messages.
// *queue.PullConsumer implements it.
type Source interface {
	Fetch(ctx context.Context, max int) ([]queue.Message, error)
}

// Options configures a Poller.
type Options struct {
	Source    Source
	Processor *processor.Processor
	BatchSize int           // Default: 10 messages per pull
	IdleDelay time.Duration // Default: 5s - sleep when a poll makes no progress

	// AckPermanentFailures acknowledges messages whose failure no
	// redelivery can fix (bad encoding, bad fields) so they do not
	// poison the subscription. Off by default: every failed message
	// is left for redelivery.
	AckPermanentFailures bool

	Logger *log.Logger
}

// Poller runs the pull loop: fetch up to BatchSize messages, process
// them sequentially, acknowledge each one after its record is durable,
// and sleep IdleDelay when the queue yields nothing. It runs until ctx
// is cancelled; cancellation is checked between batches, not mid-message.
type Poller struct {
	source       Source
	processor    *processor.Processor
	batchSize    int
	idleDelay    time.Duration
	ackPermanent bool
	logger       *log.Logger
}

// NewPoller creates a new Poller.
func NewPoller(opts Options) *Poller {
	batchSize := opts.BatchSize
	if batchSize == 0 {
		batchSize = defaultBatchSize
	}

	idleDelay := opts.IdleDelay
	if idleDelay == 0 {
		idleDelay = defaultIdleDelay
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Poller{
		source:       opts.Source,
		processor:    opts.Processor,
		batchSize:    batchSize,
		idleDelay:    idleDelay,
		ackPermanent: opts.AckPermanentFailures,
		logger:       logger,
	}
}

// Run executes the pull loop until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Printf("Starting poller (batch=%d, idle=%v)", p.batchSize, p.idleDelay)

	for {
		select {
		case <-ctx.Done():
			p.logger.Println("Poller stopped")
			return ctx.Err()
		default:
		}

		batch, err := p.source.Fetch(ctx, p.batchSize)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Println("Poller stopped")
				return ctx.Err()
			}
			p.logger.Printf("Fetch error: %v", err)
			if !p.sleep(ctx) {
				return ctx.Err()
			}
			continue
		}

		processed := 0
		for _, msg := range batch {
			if p.handle(ctx, msg) {
				processed++
			}
		}

		if processed == 0 {
			if !p.sleep(ctx) {
				return ctx.Err()
			}
		}
	}
}

// handle processes one message and acknowledges it on success. A
// failed message is logged and left unacknowledged for redelivery
// (unless the failure is permanent and AckPermanentFailures is set);
// it never stops the loop.
func (p *Poller) handle(ctx context.Context, msg queue.Message) bool {
	rec, err := p.processor.Process(ctx, msg.Data())
	if err != nil {
		p.logger.Printf("Process message: %v", err)
		if p.ackPermanent && processor.Permanent(err) {
			if ackErr := msg.Ack(); ackErr != nil {
				p.logger.Printf("Acknowledge rejected message: %v", ackErr)
			}
		}
		return false
	}

	// The record is already durable, so an ack failure here only risks
	// a duplicate on redelivery. Logged, not propagated.
	if err := msg.Ack(); err != nil {
		observability.RecordAckError()
		p.logger.Printf("Acknowledge message for record %d: %v", rec.ID, err)
		return true
	}

	observability.RecordMessageAcked()
	return true
}

// sleep waits for the idle delay. Returns false if ctx was cancelled.
func (p *Poller) sleep(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(p.idleDelay):
		return true
	}
}
