// Package repository abstracts persistence for file status records.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/seonho/docvault/internal/docvault"
)

// ErrNotFound is returned when no record matches the lookup key.
var ErrNotFound = errors.New("file record not found")

// FileRepository is the status record store: all pipeline mutations go
// through UpdateByPath, never through an in-memory copy.
type FileRepository interface {
	Create(ctx context.Context, record *docvault.FileRecord) error
	FindByPath(ctx context.Context, path string) (*docvault.FileRecord, error)
	FindByID(ctx context.Context, id string) (*docvault.FileRecord, error)
	// UpdateByPath applies a partial update to the row addressed by path.
	UpdateByPath(ctx context.Context, path string, upd docvault.FileUpdate) error
	List(ctx context.Context, limit, offset int) ([]*docvault.FileRecord, int, error)
	ListByOwner(ctx context.Context, userID string) ([]*docvault.FileRecord, error)
	DeleteByPath(ctx context.Context, path string) error
	// DeleteByOwner removes all records owned by userID (the explicit
	// pre-delete sweep for user deletion). Returns the number removed.
	DeleteByOwner(ctx context.Context, userID string) (int, error)
	Stats(ctx context.Context) (*docvault.FileStats, error)
	// FailStaleProcessing fails rows stuck in processing since before
	// cutoff and returns how many were swept.
	FailStaleProcessing(ctx context.Context, cutoff time.Time) (int64, error)
}
