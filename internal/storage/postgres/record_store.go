package postgres

import (
	"context"
	"fmt"

	"telemetry-pipeline/internal/domain"
	"telemetry-pipeline/internal/storage"
)

// ProcessedRecordStore implements storage.ProcessedRecordStore using
// PostgreSQL. The database assigns the increasing surrogate id.
type ProcessedRecordStore struct {
	pool *Pool
}

// NewProcessedRecordStore creates a new ProcessedRecordStore.
func NewProcessedRecordStore(pool *Pool) *ProcessedRecordStore {
	return &ProcessedRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ProcessedRecordStore = (*ProcessedRecordStore)(nil)

// Insert persists a new record and fills in its generated id.
func (s *ProcessedRecordStore) Insert(ctx context.Context, rec *domain.ProcessedRecord) error {
	if rec == nil {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO processed_records (utc_timestamp, mean, stddev)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	if err := s.pool.QueryRow(ctx, query, rec.UTCTimestamp, rec.Mean, rec.StdDev).Scan(&rec.ID); err != nil {
		return fmt.Errorf("insert processed record: %w", err)
	}
	return nil
}

// GetByID retrieves a record by id. Returns ErrNotFound if not exists.
func (s *ProcessedRecordStore) GetByID(ctx context.Context, id int64) (*domain.ProcessedRecord, error) {
	query := `
		SELECT id, utc_timestamp, mean, stddev
		FROM processed_records
		WHERE id = $1
	`

	var rec domain.ProcessedRecord
	err := s.pool.QueryRow(ctx, query, id).Scan(&rec.ID, &rec.UTCTimestamp, &rec.Mean, &rec.StdDev)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get processed record %d: %w", id, err)
	}

	rec.UTCTimestamp = rec.UTCTimestamp.UTC()
	return &rec, nil
}

// Count returns the number of stored records.
func (s *ProcessedRecordStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM processed_records`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count processed records: %w", err)
	}
	return count, nil
}
