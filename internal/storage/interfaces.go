// Package storage defines persistence interfaces for processed
// telemetry records.
package storage

import (
	"context"

	"telemetry-pipeline/internal/domain"
)

// ProcessedRecordStore provides access to processed_records storage.
// The store is append-only: records are never updated or deleted.
type ProcessedRecordStore interface {
	// Insert persists a new record and assigns its ID. Once Insert
	// returns nil the record is durable and visible to readers.
	// The store does not retry; retry policy belongs to the caller.
	Insert(ctx context.Context, rec *domain.ProcessedRecord) error

	// GetByID retrieves a record by ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id int64) (*domain.ProcessedRecord, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)
}
