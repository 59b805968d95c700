package workflow

import (
	"context"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/sftpflow/sftpflow/internal/metrics"
	"github.com/sftpflow/sftpflow/internal/models"
	"github.com/sftpflow/sftpflow/internal/statestore"
)

// retrieveStarter is the connector surface the retrieval workflows use.
type retrieveStarter interface {
	StartRetrieve(ctx context.Context, connectorID string, remotePaths []string, localDir string) (string, error)
}

// RetrieveResult is the JSON body answered by a pending-file retrieval pass.
type RetrieveResult struct {
	Message        string   `json:"message"`
	TransferID     string   `json:"transferId,omitempty"`
	ProcessedFiles int      `json:"processed_files"`
	FilePaths      []string `json:"file_paths,omitempty"`
}

// Retriever starts one retrieve transfer covering every file record still
// pending.
type Retriever struct {
	store       statestore.Store
	conn        retrieveStarter
	connectorID string
	localDir    string
	metrics     *metrics.Metrics
}

func NewRetriever(store statestore.Store, conn retrieveStarter, connectorID, localDir string, m *metrics.Metrics) *Retriever {
	return &Retriever{
		store:       store,
		conn:        conn,
		connectorID: connectorID,
		localDir:    localDir,
		metrics:     m,
	}
}

// Run scans for pending file records and starts a single transfer for all of
// them. With nothing pending it instead flips stale in_progress records back
// to pending so the next pass retries them.
func (r *Retriever) Run(ctx context.Context) (*RetrieveResult, error) {
	pending, err := r.store.PendingFiles(ctx)
	if err != nil {
		return nil, err
	}

	if len(pending) == 0 {
		reset, err := r.store.ResetInProgressFiles(ctx)
		if err != nil {
			return nil, err
		}
		if reset > 0 {
			zap.S().Infow("reset stale file records to pending", "count", reset)
		}
		zap.S().Info("no pending files found for retrieval")
		return &RetrieveResult{
			Message:        "No pending files found for retrieval",
			ProcessedFiles: 0,
		}, nil
	}

	paths := lo.Map(pending, func(rec models.FileRecord, _ int) string { return rec.FilePath })
	zap.S().Infow("starting file retrieval",
		"connector_id", r.connectorID,
		"files", len(paths),
		"local_dir", r.localDir,
	)

	transferID, err := r.conn.StartRetrieve(ctx, r.connectorID, paths, r.localDir)
	if err != nil {
		return nil, err
	}
	r.metrics.TransfersStarted.WithLabelValues("retrieve").Inc()
	zap.S().Infow("file retrieval started", "transfer_id", transferID)

	for _, p := range paths {
		if err := r.store.MarkFileInProgress(ctx, p, transferID); err != nil {
			zap.S().Errorw("failed to update file record", "file_path", p, "error", err)
		}
	}

	return &RetrieveResult{
		Message:        "File retrieval started successfully",
		TransferID:     transferID,
		ProcessedFiles: len(paths),
		FilePaths:      paths,
	}, nil
}
