// Package statestore defines the persisted status-record contract shared by
// the transfer workflows and its DynamoDB, Postgres and in-memory backends.
//
// Every operation is a single-record, conditional, idempotent update. There
// are no multi-record transactions: a failure updating one record never
// implies anything about the others, and callers decide per call site whether
// such a failure aborts or is logged and swallowed.
package statestore

import (
	"context"
	"errors"

	"github.com/sftpflow/sftpflow/internal/models"
)

// ErrBatchNotOpen is returned when a conditional batch update finds the
// record already in a terminal status. Terminal records are never re-updated;
// overlapping reconciliation passes converge by having every pass after the
// first fail this condition.
var ErrBatchNotOpen = errors.New("batch record is not in an open status")

// Store is the status-record surface consumed by the workflows. Scans are
// bounded to the backend's first page; records spilling past it are picked up
// by a later pass.
type Store interface {
	// PutBatch creates (or overwrites) a batch record.
	PutBatch(ctx context.Context, rec *models.BatchRecord) error

	// OpenBatches returns records whose status is non-terminal
	// (TRANSFER_STARTED or DISCOVERY_COMPLETED), in scan order.
	OpenBatches(ctx context.Context) ([]models.BatchRecord, error)

	// MarkBatchStarted advances a batch from DISCOVERY_COMPLETED to
	// TRANSFER_STARTED, recording the transfer id and the expected file
	// count. Returns ErrBatchNotOpen if the record already moved on.
	MarkBatchStarted(ctx context.Context, batchID, transferID string, filesTotal int) error

	// CompleteBatch writes a terminal outcome. The update is conditioned on
	// the record still being open; ErrBatchNotOpen signals a record that was
	// already driven to a terminal status.
	CompleteBatch(ctx context.Context, batchID string, out models.BatchOutcome) error

	// PendingFiles returns per-file records in the pending status.
	PendingFiles(ctx context.Context) ([]models.FileRecord, error)

	// MarkFileInProgress upserts a per-file record to in_progress with the
	// transfer id that now carries it.
	MarkFileInProgress(ctx context.Context, filePath, transferID string) error

	// ResetInProgressFiles flips stale in_progress records back to pending so
	// a later retrieval pass retries them. Returns the number of records
	// reset.
	ResetInProgressFiles(ctx context.Context) (int, error)
}
