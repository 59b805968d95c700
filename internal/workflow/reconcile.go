package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/sftpflow/sftpflow/internal/metrics"
	"github.com/sftpflow/sftpflow/internal/models"
	"github.com/sftpflow/sftpflow/internal/statestore"
)

// Strategy selects how open batches are driven to a terminal status.
type Strategy string

const (
	// StrategyResults reads per-file transfer results back from the
	// connector.
	StrategyResults Strategy = "results"
	// StrategyHeuristic assumes success after a fixed age, for transfers
	// whose results cannot be read back. It cannot observe real failures.
	StrategyHeuristic Strategy = "heuristic"
)

// assumeCompleteAfter is how long a started batch must age before the
// heuristic strategy declares it complete.
const assumeCompleteAfter = 2 * time.Minute

// unknownFailure stands in for failed results the connector reported without
// a message.
const unknownFailure = "Unknown error"

// resultsLister is the connector surface the reconciler uses.
type resultsLister interface {
	TransferResults(ctx context.Context, connectorID, transferID string) ([]models.FileResult, error)
}

// ReconcileResult is the JSON body answered by a reconciliation pass.
type ReconcileResult struct {
	Message          string `json:"message"`
	TransfersChecked int    `json:"transfers_checked"`
}

// Reconciler drives open batch records to a terminal status.
type Reconciler struct {
	store    statestore.Store
	conn     resultsLister
	strategy Strategy
	notifier Notifier
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewReconciler builds a reconciler; notifier may be nil when no webhook is
// configured.
func NewReconciler(store statestore.Store, conn resultsLister, strategy Strategy, notifier Notifier, m *metrics.Metrics) *Reconciler {
	return &Reconciler{
		store:    store,
		conn:     conn,
		strategy: strategy,
		notifier: notifier,
		metrics:  m,
		now:      time.Now,
	}
}

// Run performs one reconciliation pass. Failures on individual batches are
// logged and skipped; only the initial scan fails the pass.
func (r *Reconciler) Run(ctx context.Context) (*ReconcileResult, error) {
	r.metrics.ReconcilePasses.Inc()

	open, err := r.store.OpenBatches(ctx)
	if err != nil {
		return nil, err
	}
	zap.S().Infow("checking open batches", "count", len(open), "strategy", string(r.strategy))

	var checked int
	if r.strategy == StrategyHeuristic {
		checked = r.completeByAge(ctx, open)
	} else {
		r.completeByResults(ctx, open)
		checked = len(open)
	}

	return &ReconcileResult{
		Message:          "Transfer status check completed",
		TransfersChecked: checked,
	}, nil
}

func (r *Reconciler) completeByResults(ctx context.Context, open []models.BatchRecord) {
	for _, rec := range open {
		if rec.TransferID == "" || rec.ConnectorID == "" {
			zap.S().Warnw("batch record missing transfer or connector id", "batch_id", rec.BatchID)
			continue
		}

		results, err := r.conn.TransferResults(ctx, rec.ConnectorID, rec.TransferID)
		if err != nil {
			zap.S().Errorw("failed to read transfer results",
				"batch_id", rec.BatchID,
				"transfer_id", rec.TransferID,
				"error", err,
			)
			continue
		}
		if lo.SomeBy(results, func(res models.FileResult) bool { return !res.StatusCode.Terminal() }) {
			// Files still queued or moving; classify on a later pass.
			continue
		}

		successful := lo.CountBy(results, func(res models.FileResult) bool { return res.StatusCode == models.ResultCompleted })
		failed := lo.CountBy(results, func(res models.FileResult) bool { return res.StatusCode == models.ResultFailed })
		zap.S().Infow("transfer results read",
			"transfer_id", rec.TransferID,
			"successful", successful,
			"failed", failed,
			"total", len(results),
		)

		status, ok := models.Classify(successful, failed)
		if !ok {
			continue
		}

		out := models.BatchOutcome{
			Status:          status,
			FilesTotal:      len(results),
			FilesSuccessful: successful,
			FilesFailed:     failed,
			CompletedAt:     r.now().UTC(),
		}
		if failed > 0 {
			failures := lo.Filter(results, func(res models.FileResult, _ int) bool {
				return res.StatusCode == models.ResultFailed
			})
			out.ErrorMessages = lo.Map(failures, func(res models.FileResult, _ int) string {
				if res.FailureMessage == "" {
					return unknownFailure
				}
				return res.FailureMessage
			})
		}

		r.complete(ctx, rec, out)
	}
}

func (r *Reconciler) completeByAge(ctx context.Context, open []models.BatchRecord) int {
	completed := 0
	for _, rec := range open {
		if rec.Status != models.BatchTransferStarted {
			continue
		}
		age := r.now().Sub(rec.StartedAt)
		if age <= assumeCompleteAfter {
			continue
		}
		out := models.BatchOutcome{
			Status:          models.BatchCompleted,
			FilesTotal:      rec.FilesTotal,
			FilesSuccessful: rec.FilesTotal,
			FilesFailed:     0,
			CompletedAt:     r.now().UTC(),
		}
		if r.complete(ctx, rec, out) {
			zap.S().Infow("assumed batch completed by age", "batch_id", rec.BatchID, "age", age)
			completed++
		}
	}
	return completed
}

// complete applies a terminal outcome and reports whether the record was
// actually moved. A record another pass already closed is not an error.
func (r *Reconciler) complete(ctx context.Context, rec models.BatchRecord, out models.BatchOutcome) bool {
	if err := r.store.CompleteBatch(ctx, rec.BatchID, out); err != nil {
		if errors.Is(err, statestore.ErrBatchNotOpen) {
			zap.S().Infow("batch already terminal", "batch_id", rec.BatchID)
		} else {
			zap.S().Errorw("failed to update batch record", "batch_id", rec.BatchID, "error", err)
		}
		return false
	}
	zap.S().Infow("updated batch status", "batch_id", rec.BatchID, "status", string(out.Status))
	r.metrics.BatchesReconciled.WithLabelValues(string(out.Status)).Inc()

	if r.notifier != nil {
		if err := r.notifier.BatchFinished(ctx, appliedOutcome(rec, out)); err != nil {
			zap.S().Warnw("webhook notification failed", "batch_id", rec.BatchID, "error", err)
		}
	}
	return true
}

func appliedOutcome(rec models.BatchRecord, out models.BatchOutcome) models.BatchRecord {
	completed := out.CompletedAt
	rec.Status = out.Status
	rec.FilesTotal = out.FilesTotal
	rec.FilesSuccessful = out.FilesSuccessful
	rec.FilesFailed = out.FilesFailed
	rec.ErrorMessages = out.ErrorMessages
	rec.CompletedAt = &completed
	rec.UpdatedAt = out.CompletedAt
	return rec
}
