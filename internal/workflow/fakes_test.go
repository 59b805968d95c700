package workflow

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sftpflow/sftpflow/internal/metrics"
	"github.com/sftpflow/sftpflow/internal/models"
	"github.com/sftpflow/sftpflow/internal/statestore"
)

// fakeConnector covers every connector surface the workflows use. Unset
// functions answer a fixed transfer id and empty results.
type fakeConnector struct {
	startRetrieve   func(ctx context.Context, connectorID string, remotePaths []string, localDir string) (string, error)
	startSend       func(ctx context.Context, connectorID string, localPaths []string, remoteDir string) (string, error)
	transferResults func(ctx context.Context, connectorID, transferID string) ([]models.FileResult, error)
	listDirectory   func(ctx context.Context, connectorID, remoteDir string) ([]string, error)
}

func (f *fakeConnector) StartRetrieve(ctx context.Context, connectorID string, remotePaths []string, localDir string) (string, error) {
	if f.startRetrieve != nil {
		return f.startRetrieve(ctx, connectorID, remotePaths, localDir)
	}
	return "t-1", nil
}

func (f *fakeConnector) StartSend(ctx context.Context, connectorID string, localPaths []string, remoteDir string) (string, error) {
	if f.startSend != nil {
		return f.startSend(ctx, connectorID, localPaths, remoteDir)
	}
	return "t-1", nil
}

func (f *fakeConnector) TransferResults(ctx context.Context, connectorID, transferID string) ([]models.FileResult, error) {
	if f.transferResults != nil {
		return f.transferResults(ctx, connectorID, transferID)
	}
	return nil, nil
}

func (f *fakeConnector) ListDirectory(ctx context.Context, connectorID, remoteDir string) ([]string, error) {
	if f.listDirectory != nil {
		return f.listDirectory(ctx, connectorID, remoteDir)
	}
	return nil, nil
}

// listerFunc adapts a closure to the Lister interface.
type listerFunc func(ctx context.Context, dir string) ([]string, error)

func (f listerFunc) List(ctx context.Context, dir string) ([]string, error) { return f(ctx, dir) }

// fakeNotifier records the batch records it was handed.
type fakeNotifier struct {
	calls []models.BatchRecord
	err   error
}

func (n *fakeNotifier) BatchFinished(_ context.Context, rec models.BatchRecord) error {
	n.calls = append(n.calls, rec)
	return n.err
}

// failingStore overrides selected status-store operations with injected
// errors, delegating everything else to the wrapped store.
type failingStore struct {
	statestore.Store
	putErr       error
	openErr      error
	markBatchErr error
	completeErr  error
	pendingErr   error
	markFileErr  error
	resetErr     error
}

func (s *failingStore) PutBatch(ctx context.Context, rec *models.BatchRecord) error {
	if s.putErr != nil {
		return s.putErr
	}
	return s.Store.PutBatch(ctx, rec)
}

func (s *failingStore) OpenBatches(ctx context.Context) ([]models.BatchRecord, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	return s.Store.OpenBatches(ctx)
}

func (s *failingStore) MarkBatchStarted(ctx context.Context, batchID, transferID string, filesTotal int) error {
	if s.markBatchErr != nil {
		return s.markBatchErr
	}
	return s.Store.MarkBatchStarted(ctx, batchID, transferID, filesTotal)
}

func (s *failingStore) CompleteBatch(ctx context.Context, batchID string, out models.BatchOutcome) error {
	if s.completeErr != nil {
		return s.completeErr
	}
	return s.Store.CompleteBatch(ctx, batchID, out)
}

func (s *failingStore) PendingFiles(ctx context.Context) ([]models.FileRecord, error) {
	if s.pendingErr != nil {
		return nil, s.pendingErr
	}
	return s.Store.PendingFiles(ctx)
}

func (s *failingStore) MarkFileInProgress(ctx context.Context, filePath, transferID string) error {
	if s.markFileErr != nil {
		return s.markFileErr
	}
	return s.Store.MarkFileInProgress(ctx, filePath, transferID)
}

func (s *failingStore) ResetInProgressFiles(ctx context.Context) (int, error) {
	if s.resetErr != nil {
		return 0, s.resetErr
	}
	return s.Store.ResetInProgressFiles(ctx)
}

func newTestMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}
