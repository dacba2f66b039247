package memory

import (
	"context"
	"sync"

	"telemetry-pipeline/internal/domain"
	"telemetry-pipeline/internal/storage"
)

// ProcessedRecordStore is an in-memory implementation of
// storage.ProcessedRecordStore. Used by tests and the -use-memory mode.
type ProcessedRecordStore struct {
	mu     sync.RWMutex
	nextID int64
	data   map[int64]*domain.ProcessedRecord
}

// NewProcessedRecordStore creates a new in-memory record store.
func NewProcessedRecordStore() *ProcessedRecordStore {
	return &ProcessedRecordStore{
		nextID: 1,
		data:   make(map[int64]*domain.ProcessedRecord),
	}
}

// Compile-time interface check.
var _ storage.ProcessedRecordStore = (*ProcessedRecordStore)(nil)

// Insert persists a new record, assigning the next increasing id.
func (s *ProcessedRecordStore) Insert(_ context.Context, rec *domain.ProcessedRecord) error {
	if rec == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = s.nextID
	s.nextID++

	copy := *rec
	s.data[rec.ID] = &copy
	return nil
}

// GetByID retrieves a record by id. Returns ErrNotFound if not exists.
func (s *ProcessedRecordStore) GetByID(_ context.Context, id int64) (*domain.ProcessedRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	copy := *rec
	return &copy, nil
}

// Count returns the number of stored records.
func (s *ProcessedRecordStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.data)), nil
}
