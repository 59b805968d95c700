// Package memory implements the status store with in-process maps. Records do
// not survive a restart; it backs tests and single-node trials where DynamoDB
// or Postgres would be overkill.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sftpflow/sftpflow/internal/models"
	"github.com/sftpflow/sftpflow/internal/statestore"
)

// Store keeps status records in memory, safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	batches map[string]models.BatchRecord
	files   map[string]models.FileRecord
	now     func() time.Time
}

var _ statestore.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		batches: make(map[string]models.BatchRecord),
		files:   make(map[string]models.FileRecord),
		now:     time.Now,
	}
}

func (s *Store) PutBatch(_ context.Context, rec *models.BatchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[rec.BatchID] = *rec
	return nil
}

func (s *Store) OpenBatches(_ context.Context) ([]models.BatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var recs []models.BatchRecord
	for _, rec := range s.batches {
		if !rec.Status.Terminal() {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].BatchID < recs[j].BatchID })
	return recs, nil
}

func (s *Store) MarkBatchStarted(_ context.Context, batchID, transferID string, filesTotal int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.batches[batchID]
	if !ok || rec.Status != models.BatchDiscoveryCompleted {
		return statestore.ErrBatchNotOpen
	}
	rec.Status = models.BatchTransferStarted
	rec.TransferID = transferID
	rec.FilesTotal = filesTotal
	rec.UpdatedAt = s.now().UTC()
	s.batches[batchID] = rec
	return nil
}

func (s *Store) CompleteBatch(_ context.Context, batchID string, out models.BatchOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.batches[batchID]
	if !ok || rec.Status.Terminal() {
		return statestore.ErrBatchNotOpen
	}
	completedAt := out.CompletedAt
	rec.Status = out.Status
	rec.FilesTotal = out.FilesTotal
	rec.FilesSuccessful = out.FilesSuccessful
	rec.FilesFailed = out.FilesFailed
	rec.CompletedAt = &completedAt
	rec.UpdatedAt = s.now().UTC()
	rec.ErrorMessages = out.ErrorMessages
	s.batches[batchID] = rec
	return nil
}

func (s *Store) PendingFiles(_ context.Context) ([]models.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var recs []models.FileRecord
	for _, rec := range s.files {
		if rec.Status == models.FilePending {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].FilePath < recs[j].FilePath })
	return recs, nil
}

func (s *Store) MarkFileInProgress(_ context.Context, filePath, transferID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.files[filePath] = models.FileRecord{
		FilePath:   filePath,
		Status:     models.FileInProgress,
		TransferID: transferID,
		UpdatedAt:  s.now().UTC(),
	}
	return nil
}

func (s *Store) ResetInProgressFiles(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reset := 0
	for path, rec := range s.files {
		if rec.Status != models.FileInProgress {
			continue
		}
		rec.Status = models.FilePending
		rec.UpdatedAt = s.now().UTC()
		s.files[path] = rec
		reset++
	}
	return reset, nil
}

// SeedBatch and SeedFile install records directly, bypassing the workflow
// paths. Test helpers.
func (s *Store) SeedBatch(rec models.BatchRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[rec.BatchID] = rec
}

func (s *Store) SeedFile(rec models.FileRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[rec.FilePath] = rec
}

// Batch returns the stored record for batchID, if any.
func (s *Store) Batch(batchID string) (models.BatchRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.batches[batchID]
	return rec, ok
}

// File returns the stored record for filePath, if any.
func (s *Store) File(filePath string) (models.FileRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.files[filePath]
	return rec, ok
}
