package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/seonho/docvault/internal/db"
	"github.com/seonho/docvault/internal/docvault"
)

// PersistentFileRepository wraps a MemoryFileRepository with a PostgreSQL
// backend. Writes go to both stores (DB failure is logged but non-fatal).
// Reads try the database first, falling back to memory.
type PersistentFileRepository struct {
	mem *MemoryFileRepository
	db  *db.DB
}

func NewPersistentFileRepository(mem *MemoryFileRepository, database *db.DB) *PersistentFileRepository {
	return &PersistentFileRepository{mem: mem, db: database}
}

func (r *PersistentFileRepository) Create(ctx context.Context, record *docvault.FileRecord) error {
	_ = r.mem.Create(ctx, record)
	if err := r.db.CreateFile(ctx, record); err != nil {
		slog.Warn("db create file failed, in-memory only", "path", record.Path, "err", err)
	}
	return nil
}

func (r *PersistentFileRepository) FindByPath(ctx context.Context, path string) (*docvault.FileRecord, error) {
	rec, err := r.db.GetFileByPath(ctx, path)
	if err == nil {
		return rec, nil
	}
	return r.mem.FindByPath(ctx, path)
}

func (r *PersistentFileRepository) FindByID(ctx context.Context, id string) (*docvault.FileRecord, error) {
	rec, err := r.db.GetFileByID(ctx, id)
	if err == nil {
		return rec, nil
	}
	return r.mem.FindByID(ctx, id)
}

func (r *PersistentFileRepository) UpdateByPath(ctx context.Context, path string, upd docvault.FileUpdate) error {
	_ = r.mem.UpdateByPath(ctx, path, upd)
	if err := r.db.UpdateFileByPath(ctx, path, upd); err != nil {
		slog.Warn("db update file failed, in-memory only", "path", path, "err", err)
	}
	return nil
}

func (r *PersistentFileRepository) List(ctx context.Context, limit, offset int) ([]*docvault.FileRecord, int, error) {
	records, total, err := r.db.ListFiles(ctx, limit, offset)
	if err == nil {
		return records, total, nil
	}
	slog.Warn("db list files failed, falling back to in-memory", "err", err)
	return r.mem.List(ctx, limit, offset)
}

func (r *PersistentFileRepository) ListByOwner(ctx context.Context, userID string) ([]*docvault.FileRecord, error) {
	records, err := r.db.ListFilesByUser(ctx, userID)
	if err == nil {
		return records, nil
	}
	slog.Warn("db list files by user failed, falling back to in-memory", "err", err)
	return r.mem.ListByOwner(ctx, userID)
}

func (r *PersistentFileRepository) DeleteByPath(ctx context.Context, path string) error {
	err := r.mem.DeleteByPath(ctx, path)
	if dbErr := r.db.DeleteFileByPath(ctx, path); dbErr != nil {
		slog.Warn("db delete file failed", "path", path, "err", dbErr)
	}
	return err
}

func (r *PersistentFileRepository) DeleteByOwner(ctx context.Context, userID string) (int, error) {
	n, _ := r.mem.DeleteByOwner(ctx, userID)
	dbN, err := r.db.DeleteFilesByUser(ctx, userID)
	if err != nil {
		slog.Warn("db delete files by user failed", "user_id", userID, "err", err)
		return n, nil
	}
	return dbN, nil
}

func (r *PersistentFileRepository) Stats(ctx context.Context) (*docvault.FileStats, error) {
	stats, err := r.db.FileStats(ctx)
	if err == nil {
		return stats, nil
	}
	slog.Warn("db file stats failed, falling back to in-memory", "err", err)
	return r.mem.Stats(ctx)
}

func (r *PersistentFileRepository) FailStaleProcessing(ctx context.Context, cutoff time.Time) (int64, error) {
	_, _ = r.mem.FailStaleProcessing(ctx, cutoff)
	return r.db.FailStaleProcessing(ctx, cutoff)
}
