// Package docvault holds the domain types shared across the ingestion pipeline.
package docvault

import "time"

// Status is the lifecycle state of an uploaded file.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// FileRecord is the persisted per-upload row tracking extraction state.
// Path is unique per upload and addresses the object in storage.
type FileRecord struct {
	ID             string    `json:"id"`
	Path           string    `json:"path"`
	OriginalName   string    `json:"original_name"`
	FileType       string    `json:"file_type"`
	Status         Status    `json:"status"`
	ExtractedData  *string   `json:"extracted_data,omitempty"`
	Summary        *string   `json:"summary,omitempty"`
	ErrorLog       *string   `json:"error_log,omitempty"`
	ProcessingTime int64     `json:"processing_time"` // milliseconds, 0 until a summary is produced
	UserID         string    `json:"user_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FileUpdate is a partial update applied to a FileRecord by path.
// Nil fields are left untouched. An ErrorLog pointing at the empty
// string clears the stored error.
type FileUpdate struct {
	Status         *Status
	ExtractedData  *string
	Summary        *string
	ErrorLog       *string
	ProcessingTime *int64
}

// FileStats summarizes the file table for the stats read path.
type FileStats struct {
	Total             int            `json:"total"`
	ByStatus          map[Status]int `json:"by_status"`
	AvgProcessingTime int64          `json:"avg_processing_time"` // ms across summarized files
}
