// Package storage persists import artifacts (normalized exports) grouped by
// import run.
package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a run has no file with the requested ID.
var ErrNotFound = errors.New("file not found")

// FileInfo contains metadata about a stored file
type FileInfo struct {
	ID          uuid.UUID `json:"id"`
	RunID       uuid.UUID `json:"run_id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Path        string    `json:"path"` // Location inside the storage root
	CreatedAt   time.Time `json:"created_at"`
}

// Storage defines the interface for artifact storage operations
type Storage interface {
	// Save stores a file under the run and returns its metadata
	Save(ctx context.Context, runID uuid.UUID, filename string, contentType string, r io.Reader) (*FileInfo, error)

	// List returns all files of a run, oldest first
	List(ctx context.Context, runID uuid.UUID) ([]*FileInfo, error)

	// GetInfo returns metadata for a file without opening it
	GetInfo(ctx context.Context, runID uuid.UUID, fileID uuid.UUID) (*FileInfo, error)

	// Delete removes a file
	Delete(ctx context.Context, runID uuid.UUID, fileID uuid.UUID) error
}

// Config holds storage configuration
type Config struct {
	LocalPath string
}

// New creates the storage backend for cfg. Only the local filesystem is
// supported.
func New(cfg *Config) (*LocalStorage, error) {
	path := cfg.LocalPath
	if path == "" {
		path = "./exports"
	}
	return NewLocalStorage(path)
}
