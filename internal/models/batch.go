package models

import (
	"time"

	"github.com/google/uuid"
)

// BatchStatus is the lifecycle state of a transfer batch. Transitions move
// forward only: DISCOVERY_COMPLETED -> TRANSFER_STARTED -> one of the three
// terminal states.
type BatchStatus string

const (
	BatchDiscoveryCompleted BatchStatus = "DISCOVERY_COMPLETED"
	BatchTransferStarted    BatchStatus = "TRANSFER_STARTED"
	BatchCompleted          BatchStatus = "COMPLETED"
	BatchPartiallyFailed    BatchStatus = "PARTIALLY_FAILED"
	BatchFailed             BatchStatus = "FAILED"
)

// Terminal reports whether no further transition is expected from s.
func (s BatchStatus) Terminal() bool {
	switch s {
	case BatchCompleted, BatchPartiallyFailed, BatchFailed:
		return true
	}
	return false
}

// OpenBatchStatuses are the non-terminal batch states a reconciliation pass
// scans for.
var OpenBatchStatuses = []BatchStatus{BatchTransferStarted, BatchDiscoveryCompleted}

// BatchRecord tracks one group of files transferred under a single transfer
// identifier. Created when a transfer is initiated, mutated only through the
// status store, never deleted.
type BatchRecord struct {
	BatchID         string      `json:"batch_id" dynamodbav:"batch_id" gorm:"column:batch_id;primaryKey"`
	Status          BatchStatus `json:"status" dynamodbav:"status" gorm:"column:status;index;not null"`
	TransferID      string      `json:"transfer_id,omitempty" dynamodbav:"transfer_id,omitempty" gorm:"column:transfer_id"`
	ConnectorID     string      `json:"connector_id,omitempty" dynamodbav:"connector_id,omitempty" gorm:"column:connector_id"`
	FilesTotal      int         `json:"files_total" dynamodbav:"files_total" gorm:"column:files_total"`
	FilesSuccessful int         `json:"files_successful" dynamodbav:"files_successful" gorm:"column:files_successful"`
	FilesFailed     int         `json:"files_failed" dynamodbav:"files_failed" gorm:"column:files_failed"`
	StartedAt       time.Time   `json:"started_at" dynamodbav:"started_at" gorm:"column:started_at"`
	UpdatedAt       time.Time   `json:"updated_at" dynamodbav:"updated_at" gorm:"column:updated_at"`
	CompletedAt     *time.Time  `json:"completed_at,omitempty" dynamodbav:"completed_at,omitempty" gorm:"column:completed_at"`
	ErrorMessages   []string    `json:"error_messages,omitempty" dynamodbav:"error_messages,omitempty" gorm:"column:error_messages;serializer:json"`
}

// NewBatchRecord builds a batch record in DISCOVERY_COMPLETED for a freshly
// listed set of files.
func NewBatchRecord(connectorID string, filesTotal int, now time.Time) *BatchRecord {
	return &BatchRecord{
		BatchID:     uuid.NewString(),
		Status:      BatchDiscoveryCompleted,
		ConnectorID: connectorID,
		FilesTotal:  filesTotal,
		StartedAt:   now,
		UpdatedAt:   now,
	}
}

// BatchOutcome carries the classified result of a finished transfer. Applying
// it writes absolute values; applying the same outcome twice yields the same
// record.
type BatchOutcome struct {
	Status          BatchStatus
	FilesTotal      int
	FilesSuccessful int
	FilesFailed     int
	CompletedAt     time.Time
	ErrorMessages   []string
}
