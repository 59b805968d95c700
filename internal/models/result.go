package models

// ResultCode is the connector's per-file transfer status code.
type ResultCode string

const (
	ResultQueued     ResultCode = "QUEUED"
	ResultInProgress ResultCode = "IN_PROGRESS"
	ResultCompleted  ResultCode = "COMPLETED"
	ResultFailed     ResultCode = "FAILED"
)

// Terminal reports whether the connector will not change this code anymore.
func (c ResultCode) Terminal() bool {
	return c == ResultCompleted || c == ResultFailed
}

// FileResult is the per-file outcome reported by the connector for one
// transfer. Read once per reconciliation pass and aggregated, never persisted
// verbatim.
type FileResult struct {
	Path           string
	StatusCode     ResultCode
	FailureMessage string
}

// Classify maps aggregated per-file counts to a terminal batch status.
// The mapping is total and deterministic:
//
//	(>0, 0)  -> COMPLETED
//	(>0, >0) -> PARTIALLY_FAILED
//	(0, >0)  -> FAILED
//	(0, 0)   -> no classification (transfer still in progress)
//
// The second return value is false when no state change applies.
func Classify(successful, failed int) (BatchStatus, bool) {
	switch {
	case successful == 0 && failed == 0:
		return "", false
	case failed == 0:
		return BatchCompleted, true
	case successful == 0:
		return BatchFailed, true
	default:
		return BatchPartiallyFailed, true
	}
}
