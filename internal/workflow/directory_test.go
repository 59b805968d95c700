package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sftpflow/sftpflow/internal/models"
	"github.com/sftpflow/sftpflow/internal/statestore/memory"
)

func TestDirectoryRetrieverStartsBatchTransfer(t *testing.T) {
	store := memory.New()

	var gotPaths []string
	conn := &fakeConnector{
		startRetrieve: func(_ context.Context, connectorID string, remotePaths []string, localDir string) (string, error) {
			assert.Equal(t, "c-123", connectorID)
			assert.Equal(t, "/data-bucket/retrieved", localDir)
			gotPaths = remotePaths
			return "t-9", nil
		},
	}
	lister := listerFunc(func(_ context.Context, dir string) ([]string, error) {
		assert.Equal(t, "/uploads", dir)
		return []string{"/uploads/a.csv", "/uploads/b.csv"}, nil
	})

	d := NewDirectoryRetriever(store, conn, lister, "c-123", "/uploads", "/data-bucket/retrieved", newTestMetrics())
	res, err := d.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Directory retrieval started", res.Message)
	assert.Equal(t, "t-9", res.TransferID)
	assert.NotEmpty(t, res.BatchID)
	assert.Equal(t, 2, res.FilesFound)
	assert.Equal(t, []string{"/uploads/a.csv", "/uploads/b.csv"}, gotPaths)

	rec, ok := store.Batch(res.BatchID)
	require.True(t, ok)
	assert.Equal(t, models.BatchTransferStarted, rec.Status)
	assert.Equal(t, "t-9", rec.TransferID)
	assert.Equal(t, "c-123", rec.ConnectorID)
	assert.Equal(t, 2, rec.FilesTotal)

	file, ok := store.File("/uploads/a.csv")
	require.True(t, ok)
	assert.Equal(t, models.FileInProgress, file.Status)
	assert.Equal(t, "t-9", file.TransferID)
}

func TestDirectoryRetrieverReportsListingFailure(t *testing.T) {
	store := memory.New()
	conn := &fakeConnector{
		startRetrieve: func(_ context.Context, _ string, _ []string, _ string) (string, error) {
			t.Fatal("no transfer should start after a failed listing")
			return "", nil
		},
	}
	lister := listerFunc(func(_ context.Context, _ string) ([]string, error) {
		return nil, errors.New("connection refused")
	})

	m := newTestMetrics()
	d := NewDirectoryRetriever(store, conn, lister, "c-123", "/uploads", "/data-bucket/retrieved", m)
	res, err := d.Run(context.Background())
	require.NoError(t, err, "a listing failure is answered in the body, not raised")

	assert.Equal(t, "Directory listing failed: connection refused", res.Message)
	assert.Zero(t, res.FilesFound)
	assert.Empty(t, res.BatchID)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ListingFailures))

	open, err := store.OpenBatches(context.Background())
	require.NoError(t, err)
	assert.Empty(t, open, "no batch is recorded for a failed listing")
}

func TestDirectoryRetrieverAnswersEmptyDirectory(t *testing.T) {
	store := memory.New()
	lister := listerFunc(func(_ context.Context, _ string) ([]string, error) {
		return nil, nil
	})

	d := NewDirectoryRetriever(store, &fakeConnector{}, lister, "c-123", "/uploads", "/data-bucket/retrieved", newTestMetrics())
	res, err := d.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "No files found in /uploads", res.Message)
	assert.Zero(t, res.FilesFound)
	assert.Empty(t, res.BatchID)
}

func TestDirectoryRetrieverPropagatesTransferError(t *testing.T) {
	store := memory.New()
	conn := &fakeConnector{
		startRetrieve: func(_ context.Context, _ string, _ []string, _ string) (string, error) {
			return "", errors.New("throttled")
		},
	}
	lister := listerFunc(func(_ context.Context, _ string) ([]string, error) {
		return []string{"/uploads/a.csv"}, nil
	})

	d := NewDirectoryRetriever(store, conn, lister, "c-123", "/uploads", "/data-bucket/retrieved", newTestMetrics())
	_, err := d.Run(context.Background())
	require.Error(t, err)

	open, err := store.OpenBatches(context.Background())
	require.NoError(t, err)
	require.Len(t, open, 1, "the batch record stays behind for reconciliation to find")
	assert.Equal(t, models.BatchDiscoveryCompleted, open[0].Status)
}

func TestDirectoryRetrieverToleratesRecordUpdateFailures(t *testing.T) {
	mem := memory.New()
	store := &failingStore{
		Store:        mem,
		markBatchErr: errors.New("conditional check failed"),
		markFileErr:  errors.New("conditional check failed"),
	}
	lister := listerFunc(func(_ context.Context, _ string) ([]string, error) {
		return []string{"/uploads/a.csv"}, nil
	})

	d := NewDirectoryRetriever(store, &fakeConnector{}, lister, "c-123", "/uploads", "/data-bucket/retrieved", newTestMetrics())
	res, err := d.Run(context.Background())
	require.NoError(t, err, "record update failures after the transfer started are logged, not raised")
	assert.Equal(t, "Directory retrieval started", res.Message)
	assert.Equal(t, 1, res.FilesFound)
}
