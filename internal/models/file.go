package models

import "time"

// FileStatus is the simpler two-step lifecycle used by per-file records in
// the static retrieval workflow.
type FileStatus string

const (
	FilePending    FileStatus = "pending"
	FileInProgress FileStatus = "in_progress"
	FileCompleted  FileStatus = "completed"
)

// FileRecord tracks a single remote file queued for retrieval, keyed by its
// remote path.
type FileRecord struct {
	FilePath   string     `json:"file_path" dynamodbav:"file_path" gorm:"column:file_path;primaryKey"`
	Status     FileStatus `json:"status" dynamodbav:"status" gorm:"column:status;index;not null"`
	TransferID string     `json:"transfer_id,omitempty" dynamodbav:"transfer_id,omitempty" gorm:"column:transfer_id"`
	UpdatedAt  time.Time  `json:"updated_at" dynamodbav:"updated_at" gorm:"column:updated_at"`
}
