// Package processor orchestrates the per-message pipeline:
// decode → validate → normalize → compute → persist.
package processor

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"telemetry-pipeline/internal/domain"
	"telemetry-pipeline/internal/observability"
	"telemetry-pipeline/internal/payload"
	"telemetry-pipeline/internal/stats"
	"telemetry-pipeline/internal/storage"
)

// Processor transforms one raw message into one persisted record.
// It holds no state across messages; the store is the only dependency.
type Processor struct {
	store storage.ProcessedRecordStore
}

// New creates a Processor writing to store.
func New(store storage.ProcessedRecordStore) *Processor {
	return &Processor{store: store}
}

// Process runs one raw JSON message through the pipeline. On success
// exactly one record has been durably inserted and is returned with
// its assigned id. Failures carry the step they occurred at via *Error.
func (p *Processor) Process(ctx context.Context, raw []byte) (*domain.ProcessedRecord, error) {
	start := time.Now()

	pl, err := payload.Parse(raw)
	if err != nil {
		if errors.Is(err, payload.ErrMalformed) {
			return nil, p.fail(KindDecode, err)
		}
		return nil, p.fail(KindValidation, err)
	}

	ts, err := payload.NormalizeTimestamp(pl.TimeStamp)
	if err != nil {
		return nil, p.fail(KindTimestamp, err)
	}

	st, err := stats.Compute(pl.Data)
	if err != nil {
		return nil, p.fail(KindComputation, err)
	}

	rec := &domain.ProcessedRecord{
		UTCTimestamp: ts,
		Mean:         st.Mean,
		StdDev:       st.StdDev,
	}

	insertStart := time.Now()
	err = p.store.Insert(ctx, rec)
	observability.RecordInsert(time.Since(insertStart).Seconds(), err)
	if err != nil {
		return nil, p.fail(KindStorage, err)
	}

	observability.RecordMessageProcessed(time.Since(start).Seconds())
	return rec, nil
}

// ProcessEncoded handles a base64-encoded message body, the shape
// push-delivery infrastructure hands to one-shot consumers.
func (p *Processor) ProcessEncoded(ctx context.Context, encoded string) (*domain.ProcessedRecord, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, p.fail(KindDecode, fmt.Errorf("decode base64: %w", err))
	}
	return p.Process(ctx, raw)
}

func (p *Processor) fail(kind Kind, err error) error {
	observability.RecordProcessingError(string(kind))
	return &Error{Kind: kind, Err: err}
}
