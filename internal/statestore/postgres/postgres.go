// Package postgres implements the status store on PostgreSQL via GORM, for
// deployments that keep status records in a relational database instead of
// DynamoDB.
package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sftpflow/sftpflow/internal/models"
	"github.com/sftpflow/sftpflow/internal/statestore"
)

// Store persists status records in PostgreSQL.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

var _ statestore.Store = (*Store)(nil)

// Open connects to the database at dsn and migrates the record tables.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := db.AutoMigrate(&models.BatchRecord{}, &models.FileRecord{}); err != nil {
		return nil, fmt.Errorf("migrating record tables: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) PutBatch(ctx context.Context, rec *models.BatchRecord) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "batch_id"}},
			UpdateAll: true,
		}).
		Create(rec).Error
	if err != nil {
		return fmt.Errorf("putting batch record %s: %w", rec.BatchID, err)
	}
	return nil
}

func (s *Store) OpenBatches(ctx context.Context) ([]models.BatchRecord, error) {
	var recs []models.BatchRecord
	err := s.db.WithContext(ctx).
		Where("status IN ?", models.OpenBatchStatuses).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("querying open batch records: %w", err)
	}
	return recs, nil
}

func (s *Store) MarkBatchStarted(ctx context.Context, batchID, transferID string, filesTotal int) error {
	res := s.db.WithContext(ctx).
		Model(&models.BatchRecord{}).
		Where("batch_id = ? AND status = ?", batchID, models.BatchDiscoveryCompleted).
		Updates(map[string]any{
			"status":      models.BatchTransferStarted,
			"transfer_id": transferID,
			"files_total": filesTotal,
			"updated_at":  s.now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("updating batch record %s: %w", batchID, res.Error)
	}
	if res.RowsAffected == 0 {
		return statestore.ErrBatchNotOpen
	}
	return nil
}

func (s *Store) CompleteBatch(ctx context.Context, batchID string, out models.BatchOutcome) error {
	res := s.db.WithContext(ctx).
		Model(&models.BatchRecord{}).
		Where("batch_id = ? AND status IN ?", batchID, models.OpenBatchStatuses).
		Select("status", "files_total", "files_successful", "files_failed", "completed_at", "updated_at", "error_messages").
		Updates(&models.BatchRecord{
			Status:          out.Status,
			FilesTotal:      out.FilesTotal,
			FilesSuccessful: out.FilesSuccessful,
			FilesFailed:     out.FilesFailed,
			CompletedAt:     &out.CompletedAt,
			UpdatedAt:       s.now().UTC(),
			ErrorMessages:   out.ErrorMessages,
		})
	if res.Error != nil {
		return fmt.Errorf("updating batch record %s: %w", batchID, res.Error)
	}
	if res.RowsAffected == 0 {
		return statestore.ErrBatchNotOpen
	}
	return nil
}

func (s *Store) PendingFiles(ctx context.Context) ([]models.FileRecord, error) {
	var recs []models.FileRecord
	err := s.db.WithContext(ctx).
		Where("status = ?", models.FilePending).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("querying pending file records: %w", err)
	}
	return recs, nil
}

func (s *Store) MarkFileInProgress(ctx context.Context, filePath, transferID string) error {
	rec := models.FileRecord{
		FilePath:   filePath,
		Status:     models.FileInProgress,
		TransferID: transferID,
		UpdatedAt:  s.now().UTC(),
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "file_path"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "transfer_id", "updated_at"}),
		}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("putting file record %s: %w", filePath, err)
	}
	return nil
}

func (s *Store) ResetInProgressFiles(ctx context.Context) (int, error) {
	res := s.db.WithContext(ctx).
		Model(&models.FileRecord{}).
		Where("status = ?", models.FileInProgress).
		Updates(map[string]any{
			"status":     models.FilePending,
			"updated_at": s.now().UTC(),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("resetting in-progress file records: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}
