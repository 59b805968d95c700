package workflow

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sftpflow/sftpflow/internal/metrics"
	"github.com/sftpflow/sftpflow/internal/models"
	"github.com/sftpflow/sftpflow/internal/statestore"
)

// directoryLister is the connector surface used when no direct SFTP endpoint
// is configured.
type directoryLister interface {
	ListDirectory(ctx context.Context, connectorID, remoteDir string) ([]string, error)
}

// ConnectorLister adapts connector directory listings to the Lister
// interface.
type ConnectorLister struct {
	conn        directoryLister
	connectorID string
}

func NewConnectorLister(conn directoryLister, connectorID string) *ConnectorLister {
	return &ConnectorLister{conn: conn, connectorID: connectorID}
}

func (l *ConnectorLister) List(ctx context.Context, dir string) ([]string, error) {
	return l.conn.ListDirectory(ctx, l.connectorID, dir)
}

// DirectoryResult is the JSON body answered by a directory retrieval pass.
type DirectoryResult struct {
	Message    string   `json:"message"`
	TransferID string   `json:"transferId,omitempty"`
	BatchID    string   `json:"batch_id,omitempty"`
	FilesFound int      `json:"files_found"`
	FilePaths  []string `json:"file_paths,omitempty"`
}

// DirectoryRetriever discovers the contents of a remote directory and starts
// one retrieve transfer for everything found, tracking the pass as a batch
// record.
type DirectoryRetriever struct {
	store       statestore.Store
	conn        retrieveStarter
	lister      Lister
	connectorID string
	sourceDir   string
	localDir    string
	metrics     *metrics.Metrics
	now         func() time.Time
}

func NewDirectoryRetriever(store statestore.Store, conn retrieveStarter, lister Lister, connectorID, sourceDir, localDir string, m *metrics.Metrics) *DirectoryRetriever {
	return &DirectoryRetriever{
		store:       store,
		conn:        conn,
		lister:      lister,
		connectorID: connectorID,
		sourceDir:   sourceDir,
		localDir:    localDir,
		metrics:     m,
		now:         time.Now,
	}
}

// Run lists the source directory and starts a transfer for its files. A
// listing failure is reported in the result body, not as an error: the
// trigger is still answered and nothing is recorded.
func (d *DirectoryRetriever) Run(ctx context.Context) (*DirectoryResult, error) {
	files, err := d.lister.List(ctx, d.sourceDir)
	if err != nil {
		d.metrics.ListingFailures.Inc()
		zap.S().Errorw("directory listing failed", "dir", d.sourceDir, "error", err)
		return &DirectoryResult{
			Message:    fmt.Sprintf("Directory listing failed: %s", err),
			FilesFound: 0,
		}, nil
	}
	if len(files) == 0 {
		zap.S().Infow("no files found", "dir", d.sourceDir)
		return &DirectoryResult{
			Message:    fmt.Sprintf("No files found in %s", d.sourceDir),
			FilesFound: 0,
		}, nil
	}

	rec := models.NewBatchRecord(d.connectorID, len(files), d.now().UTC())
	if err := d.store.PutBatch(ctx, rec); err != nil {
		return nil, err
	}

	transferID, err := d.conn.StartRetrieve(ctx, d.connectorID, files, d.localDir)
	if err != nil {
		return nil, err
	}
	d.metrics.TransfersStarted.WithLabelValues("directory").Inc()
	zap.S().Infow("directory retrieval started",
		"batch_id", rec.BatchID,
		"transfer_id", transferID,
		"files", len(files),
	)

	if err := d.store.MarkBatchStarted(ctx, rec.BatchID, transferID, len(files)); err != nil {
		zap.S().Errorw("failed to update batch record", "batch_id", rec.BatchID, "error", err)
	}
	for _, p := range files {
		if err := d.store.MarkFileInProgress(ctx, p, transferID); err != nil {
			zap.S().Warnw("failed to update file record", "file_path", p, "error", err)
		}
	}

	return &DirectoryResult{
		Message:    "Directory retrieval started",
		TransferID: transferID,
		BatchID:    rec.BatchID,
		FilesFound: len(files),
		FilePaths:  files,
	}, nil
}
