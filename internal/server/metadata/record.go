// Package metadata keeps the descriptive record of every stored upload.
package metadata

import (
	"context"
	"time"
)

// Record describes one stored object. Records are immutable once stored.
type Record struct {
	Key          string
	OriginalName string
	MimeType     string
	Size         int64
	UploadedAt   time.Time
}

// Store maps keys to records.
type Store interface {
	// Put registers rec under rec.Key. An existing key yields
	// common.ErrorAlreadyExists.
	Put(ctx context.Context, rec Record) error

	// Get returns the record for key or an error wrapping common.ErrorNotFound.
	Get(ctx context.Context, key string) (Record, error)
}
