package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/seonho/docvault/internal/docvault"
)

const fileColumns = `id, path, original_name, file_type, status, extracted_data,
	summary, error_log, processing_time, user_id, created_at, updated_at`

func (d *DB) CreateFile(ctx context.Context, f *docvault.FileRecord) error {
	_, err := d.Pool.ExecContext(ctx,
		`INSERT INTO files (id, path, original_name, file_type, status, user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		f.ID, f.Path, f.OriginalName, f.FileType, string(f.Status), f.UserID, f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	return nil
}

func (d *DB) GetFileByPath(ctx context.Context, path string) (*docvault.FileRecord, error) {
	row := d.Pool.QueryRowContext(ctx,
		`SELECT `+fileColumns+` FROM files WHERE path = $1`, path)
	return scanFile(row)
}

func (d *DB) GetFileByID(ctx context.Context, id string) (*docvault.FileRecord, error) {
	row := d.Pool.QueryRowContext(ctx,
		`SELECT `+fileColumns+` FROM files WHERE id = $1`, id)
	return scanFile(row)
}

// UpdateFileByPath applies a partial update to the row addressed by path.
// updated_at always advances.
func (d *DB) UpdateFileByPath(ctx context.Context, path string, upd docvault.FileUpdate) error {
	sets := []string{"updated_at = NOW()"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if upd.Status != nil {
		sets = append(sets, "status = "+arg(string(*upd.Status)))
	}
	if upd.ExtractedData != nil {
		sets = append(sets, "extracted_data = "+arg(*upd.ExtractedData))
	}
	if upd.Summary != nil {
		sets = append(sets, "summary = "+arg(*upd.Summary))
	}
	if upd.ErrorLog != nil {
		// empty string clears the stored error
		sets = append(sets, "error_log = NULLIF("+arg(*upd.ErrorLog)+", '')")
	}
	if upd.ProcessingTime != nil {
		sets = append(sets, "processing_time = "+arg(*upd.ProcessingTime))
	}

	query := "UPDATE files SET "
	for i, s := range sets {
		if i > 0 {
			query += ", "
		}
		query += s
	}
	query += " WHERE path = " + arg(path)

	res, err := d.Pool.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update file: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (d *DB) ListFiles(ctx context.Context, limit, offset int) ([]*docvault.FileRecord, int, error) {
	var total int
	if err := d.Pool.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count files: %w", err)
	}

	rows, err := d.Pool.QueryContext(ctx,
		`SELECT `+fileColumns+` FROM files ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	records, err := scanFiles(rows)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (d *DB) ListFilesByUser(ctx context.Context, userID string) ([]*docvault.FileRecord, error) {
	rows, err := d.Pool.QueryContext(ctx,
		`SELECT `+fileColumns+` FROM files WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list files by user: %w", err)
	}
	defer rows.Close()

	return scanFiles(rows)
}

func (d *DB) DeleteFileByPath(ctx context.Context, path string) error {
	_, err := d.Pool.ExecContext(ctx, `DELETE FROM files WHERE path = $1`, path)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

func (d *DB) DeleteFilesByUser(ctx context.Context, userID string) (int, error) {
	res, err := d.Pool.ExecContext(ctx, `DELETE FROM files WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete files by user: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (d *DB) FileStats(ctx context.Context) (*docvault.FileStats, error) {
	stats := &docvault.FileStats{ByStatus: map[docvault.Status]int{}}

	rows, err := d.Pool.QueryContext(ctx, `SELECT status, COUNT(*) FROM files GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("file stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats.ByStatus[docvault.Status(status)] = count
		stats.Total += count
	}

	var avg sql.NullFloat64
	if err := d.Pool.QueryRowContext(ctx,
		`SELECT AVG(processing_time) FROM files WHERE processing_time > 0`).Scan(&avg); err != nil {
		return nil, fmt.Errorf("avg processing time: %w", err)
	}
	if avg.Valid {
		stats.AvgProcessingTime = int64(avg.Float64)
	}
	return stats, nil
}

// FailStaleProcessing marks rows stuck in processing since before cutoff
// as failed. Returns the number of rows swept.
func (d *DB) FailStaleProcessing(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := d.Pool.ExecContext(ctx,
		`UPDATE files
		 SET status = 'failed',
		     error_log = 'File extraction error: processing timed out',
		     updated_at = NOW()
		 WHERE status = 'processing' AND updated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("fail stale processing: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*docvault.FileRecord, error) {
	f := &docvault.FileRecord{}
	var status string
	var extracted, summary, errorLog sql.NullString

	err := row.Scan(&f.ID, &f.Path, &f.OriginalName, &f.FileType, &status,
		&extracted, &summary, &errorLog, &f.ProcessingTime, &f.UserID,
		&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}

	f.Status = docvault.Status(status)
	if extracted.Valid {
		f.ExtractedData = &extracted.String
	}
	if summary.Valid {
		f.Summary = &summary.String
	}
	if errorLog.Valid {
		f.ErrorLog = &errorLog.String
	}
	return f, nil
}

func scanFiles(rows *sql.Rows) ([]*docvault.FileRecord, error) {
	var records []*docvault.FileRecord
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		records = append(records, f)
	}
	return records, rows.Err()
}
