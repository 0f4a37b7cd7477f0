package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/seonho/docvault/internal/docvault"
)

// MemoryFileRepository stores file records in memory, keyed by path.
type MemoryFileRepository struct {
	mu      sync.RWMutex
	records map[string]*docvault.FileRecord // path -> record
}

func NewMemoryFileRepository() *MemoryFileRepository {
	return &MemoryFileRepository{
		records: make(map[string]*docvault.FileRecord),
	}
}

func (r *MemoryFileRepository) Create(_ context.Context, record *docvault.FileRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *record
	r.records[record.Path] = &clone
	return nil
}

func (r *MemoryFileRepository) FindByPath(_ context.Context, path string) (*docvault.FileRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[path]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *rec
	return &clone, nil
}

func (r *MemoryFileRepository) FindByID(_ context.Context, id string) (*docvault.FileRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.records {
		if rec.ID == id {
			clone := *rec
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryFileRepository) UpdateByPath(_ context.Context, path string, upd docvault.FileUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[path]
	if !ok {
		return ErrNotFound
	}

	if upd.Status != nil {
		rec.Status = *upd.Status
	}
	if upd.ExtractedData != nil {
		v := *upd.ExtractedData
		rec.ExtractedData = &v
	}
	if upd.Summary != nil {
		v := *upd.Summary
		rec.Summary = &v
	}
	if upd.ErrorLog != nil {
		if *upd.ErrorLog == "" {
			rec.ErrorLog = nil
		} else {
			v := *upd.ErrorLog
			rec.ErrorLog = &v
		}
	}
	if upd.ProcessingTime != nil {
		rec.ProcessingTime = *upd.ProcessingTime
	}
	rec.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryFileRepository) List(_ context.Context, limit, offset int) ([]*docvault.FileRecord, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*docvault.FileRecord, 0, len(r.records))
	for _, rec := range r.records {
		clone := *rec
		all = append(all, &clone)
	}

	// Sort by created_at descending (newest first).
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *MemoryFileRepository) ListByOwner(_ context.Context, userID string) ([]*docvault.FileRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var owned []*docvault.FileRecord
	for _, rec := range r.records {
		if rec.UserID == userID {
			clone := *rec
			owned = append(owned, &clone)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})
	return owned, nil
}

func (r *MemoryFileRepository) DeleteByPath(_ context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[path]; !ok {
		return ErrNotFound
	}
	delete(r.records, path)
	return nil
}

func (r *MemoryFileRepository) DeleteByOwner(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for path, rec := range r.records {
		if rec.UserID == userID {
			delete(r.records, path)
			n++
		}
	}
	return n, nil
}

func (r *MemoryFileRepository) Stats(_ context.Context) (*docvault.FileStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &docvault.FileStats{ByStatus: map[docvault.Status]int{}}
	var sum, counted int64
	for _, rec := range r.records {
		stats.Total++
		stats.ByStatus[rec.Status]++
		if rec.ProcessingTime > 0 {
			sum += rec.ProcessingTime
			counted++
		}
	}
	if counted > 0 {
		stats.AvgProcessingTime = sum / counted
	}
	return stats, nil
}

func (r *MemoryFileRepository) FailStaleProcessing(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, rec := range r.records {
		if rec.Status == docvault.StatusProcessing && rec.UpdatedAt.Before(cutoff) {
			rec.Status = docvault.StatusFailed
			msg := "File extraction error: processing timed out"
			rec.ErrorLog = &msg
			rec.UpdatedAt = time.Now()
			n++
		}
	}
	return n, nil
}
