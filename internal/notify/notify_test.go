package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sftpflow/sftpflow/internal/models"
)

func TestBatchFinishedPostsRecord(t *testing.T) {
	var got event
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	wh := New(Config{URL: srv.URL})
	rec := models.BatchRecord{
		BatchID:         "b-1",
		Status:          models.BatchCompleted,
		TransferID:      "t-1",
		FilesTotal:      2,
		FilesSuccessful: 2,
	}
	require.NoError(t, wh.BatchFinished(context.Background(), rec))

	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "batch.finished", got.Event)
	assert.Equal(t, "b-1", got.Batch.BatchID)
	assert.Equal(t, models.BatchCompleted, got.Batch.Status)
	assert.Equal(t, 2, got.Batch.FilesSuccessful)
}

func TestBatchFinishedRejectsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	}))
	defer srv.Close()

	wh := New(Config{URL: srv.URL})
	err := wh.BatchFinished(context.Background(), models.BatchRecord{BatchID: "b-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestBatchFinishedUsesClientCredentials(t *testing.T) {
	tokens := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"tok-1","token_type":"bearer"}`)
	}))
	defer tokens.Close()

	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	wh := New(Config{
		URL:          srv.URL,
		ClientID:     "svc",
		ClientSecret: "s3cret",
		TokenURL:     tokens.URL,
	})
	require.NoError(t, wh.BatchFinished(context.Background(), models.BatchRecord{BatchID: "b-1"}))
	assert.Equal(t, "Bearer tok-1", auth)
}

func TestNewDefaultsTimeout(t *testing.T) {
	wh := New(Config{URL: "http://hooks.internal/batch"})
	assert.Equal(t, defaultTimeout, wh.client.Timeout)
}
