package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sftpflow/sftpflow/internal/models"
	"github.com/sftpflow/sftpflow/internal/workflow"
)

type fakeRetriever struct {
	res *workflow.RetrieveResult
	err error
}

func (f *fakeRetriever) Run(context.Context) (*workflow.RetrieveResult, error) { return f.res, f.err }

type fakeDirectory struct {
	res *workflow.DirectoryResult
	err error
}

func (f *fakeDirectory) Run(context.Context) (*workflow.DirectoryResult, error) { return f.res, f.err }

type fakeSender struct {
	res *workflow.SendResult
	err error
	got models.ObjectCreatedEvent
}

func (f *fakeSender) Run(_ context.Context, event models.ObjectCreatedEvent) (*workflow.SendResult, error) {
	f.got = event
	return f.res, f.err
}

type fakeReconciler struct {
	res *workflow.ReconcileResult
	err error
}

func (f *fakeReconciler) Run(context.Context) (*workflow.ReconcileResult, error) { return f.res, f.err }

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	require.NoError(t, json.NewDecoder(rec.Body).Decode(into))
}

func TestRetrieveAnswersResult(t *testing.T) {
	h := New(&fakeRetriever{res: &workflow.RetrieveResult{
		Message:        "File retrieval started successfully",
		TransferID:     "t-1",
		ProcessedFiles: 2,
		FilePaths:      []string{"/uploads/a.csv", "/uploads/b.csv"},
	}}, nil, nil, nil)

	rec := httptest.NewRecorder()
	h.Retrieve(rec, httptest.NewRequest(http.MethodPost, "/transfers/retrieve", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got workflow.RetrieveResult
	decodeBody(t, rec, &got)
	assert.Equal(t, "File retrieval started successfully", got.Message)
	assert.Equal(t, "t-1", got.TransferID)
	assert.Equal(t, 2, got.ProcessedFiles)
}

func TestRetrieveRejectsWrongMethod(t *testing.T) {
	h := New(&fakeRetriever{}, nil, nil, nil)

	rec := httptest.NewRecorder()
	h.Retrieve(rec, httptest.NewRequest(http.MethodGet, "/transfers/retrieve", nil))

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	var got map[string]string
	decodeBody(t, rec, &got)
	assert.Equal(t, "method not allowed", got["error"])
}

func TestRetrieveAnswersWorkflowError(t *testing.T) {
	h := New(&fakeRetriever{err: errors.New("scan failed")}, nil, nil, nil)

	rec := httptest.NewRecorder()
	h.Retrieve(rec, httptest.NewRequest(http.MethodPost, "/transfers/retrieve", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var got map[string]string
	decodeBody(t, rec, &got)
	assert.Equal(t, "scan failed", got["error"])
}

func TestRetrieveDirectoryAnswersResult(t *testing.T) {
	h := New(nil, &fakeDirectory{res: &workflow.DirectoryResult{
		Message:    "Directory retrieval started",
		TransferID: "t-9",
		BatchID:    "b-1",
		FilesFound: 3,
	}}, nil, nil)

	rec := httptest.NewRecorder()
	h.RetrieveDirectory(rec, httptest.NewRequest(http.MethodPost, "/transfers/retrieve-directory", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got workflow.DirectoryResult
	decodeBody(t, rec, &got)
	assert.Equal(t, "b-1", got.BatchID)
	assert.Equal(t, 3, got.FilesFound)
}

func TestSendForwardsEvent(t *testing.T) {
	sender := &fakeSender{res: &workflow.SendResult{Message: "Transfer initiated", TransferID: "t-42"}}
	h := New(nil, nil, sender, nil)

	body := `{"source":"aws.s3","detail-type":"Object Created","detail":{"bucket":{"name":"data-bucket"},"object":{"key":"retrieved/report.csv","size":123}}}`
	rec := httptest.NewRecorder()
	h.Send(rec, httptest.NewRequest(http.MethodPost, "/transfers/send", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "data-bucket", sender.got.Detail.Bucket.Name)
	assert.Equal(t, "retrieved/report.csv", sender.got.Detail.Object.Key)

	var got workflow.SendResult
	decodeBody(t, rec, &got)
	assert.Equal(t, "t-42", got.TransferID)
}

func TestSendRejectsUnparseableBody(t *testing.T) {
	h := New(nil, nil, &fakeSender{}, nil)

	rec := httptest.NewRecorder()
	h.Send(rec, httptest.NewRequest(http.MethodPost, "/transfers/send", strings.NewReader("{not json")))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var got map[string]string
	decodeBody(t, rec, &got)
	assert.Contains(t, got["error"], "decoding event")
}

func TestSendRejectsBadEvent(t *testing.T) {
	h := New(nil, nil, &fakeSender{err: workflow.ErrBadEvent}, nil)

	rec := httptest.NewRecorder()
	h.Send(rec, httptest.NewRequest(http.MethodPost, "/transfers/send", strings.NewReader("{}")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendAnswersWorkflowError(t *testing.T) {
	h := New(nil, nil, &fakeSender{err: errors.New("connector offline")}, nil)

	rec := httptest.NewRecorder()
	h.Send(rec, httptest.NewRequest(http.MethodPost, "/transfers/send", strings.NewReader("{}")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestReconcileAnswersResult(t *testing.T) {
	h := New(nil, nil, nil, &fakeReconciler{res: &workflow.ReconcileResult{
		Message:          "Transfer status check completed",
		TransfersChecked: 2,
	}})

	rec := httptest.NewRecorder()
	h.Reconcile(rec, httptest.NewRequest(http.MethodPost, "/transfers/reconcile", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got workflow.ReconcileResult
	decodeBody(t, rec, &got)
	assert.Equal(t, 2, got.TransfersChecked)
}

func TestTransferEventAcknowledged(t *testing.T) {
	h := New(nil, nil, nil, nil)

	body := `{"source":"aws.transfer","detail-type":"SFTP Connector File Retrieve Completed","detail":{"transferId":"t-1","connectorId":"c-123"}}`
	rec := httptest.NewRecorder()
	h.TransferEvent(rec, httptest.NewRequest(http.MethodPost, "/events/transfer", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]string
	decodeBody(t, rec, &got)
	assert.Equal(t, "Transfer event processed for t-1", got["message"])
}

func TestTransferEventWithoutID(t *testing.T) {
	h := New(nil, nil, nil, nil)

	rec := httptest.NewRecorder()
	h.TransferEvent(rec, httptest.NewRequest(http.MethodPost, "/events/transfer", strings.NewReader("{}")))

	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]string
	decodeBody(t, rec, &got)
	assert.Equal(t, "No transfer ID found", got["message"])
}

func TestTransferEventRejectsUnparseableBody(t *testing.T) {
	h := New(nil, nil, nil, nil)

	rec := httptest.NewRecorder()
	h.TransferEvent(rec, httptest.NewRequest(http.MethodPost, "/events/transfer", strings.NewReader("{not json")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
