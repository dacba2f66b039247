// Package archive stores raw telemetry payloads before queue
// publication.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Archiver persists one raw payload keyed by its sample timestamp.
type Archiver interface {
	Archive(ctx context.Context, ts time.Time, raw []byte) (string, error)
}

// DirArchiver writes payloads under root as data/<ISO-timestamp>.json,
// mirroring the object-key layout of a storage bucket.
type DirArchiver struct {
	root string
}

// NewDirArchiver creates an Archiver rooted at root.
func NewDirArchiver(root string) *DirArchiver {
	return &DirArchiver{root: root}
}

// Compile-time interface check.
var _ Archiver = (*DirArchiver)(nil)

// Archive writes raw to data/<ISO-timestamp>.json and returns the path.
func (a *DirArchiver) Archive(_ context.Context, ts time.Time, raw []byte) (string, error) {
	dir := filepath.Join(a.root, "data")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create archive directory: %w", err)
	}

	name := ts.UTC().Format("2006-01-02T15:04:05Z") + ".json"
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return "", fmt.Errorf("write archive file: %w", err)
	}
	return path, nil
}
