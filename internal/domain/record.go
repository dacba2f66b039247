// Package domain contains the core types shared across the pipeline.
package domain

import "time"

// RawPayload is the wire shape of one telemetry sample as it arrives
// over HTTP or through the queue.
type RawPayload struct {
	TimeStamp string    `json:"time_stamp"`
	Data      []float64 `json:"data"`
}

// Statistics holds the values derived from one sample.
type Statistics struct {
	Mean   float64
	StdDev float64
}

// ProcessedRecord is one persisted result row. Records are append-only:
// never updated or deleted after insert.
type ProcessedRecord struct {
	ID           int64
	UTCTimestamp time.Time
	Mean         float64
	StdDev       float64
}
