// Package notify posts batch outcomes to an operator-provided webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/sftpflow/sftpflow/internal/models"
)

const defaultTimeout = 10 * time.Second

// Config describes the webhook endpoint. When ClientID is set, requests carry
// an OAuth2 client-credentials bearer token from TokenURL.
type Config struct {
	URL          string
	ClientID     string
	ClientSecret string
	TokenURL     string
	Timeout      time.Duration
}

// Webhook delivers batch-finished notifications over HTTP.
type Webhook struct {
	url    string
	client *http.Client
}

func New(cfg Config) *Webhook {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	base := &http.Client{Timeout: cfg.Timeout}

	client := base
	if cfg.ClientID != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		client = cc.Client(ctx)
		client.Timeout = cfg.Timeout
	}

	return &Webhook{url: cfg.URL, client: client}
}

// event is the JSON body posted to the webhook.
type event struct {
	Event string             `json:"event"`
	Batch models.BatchRecord `json:"batch"`
}

// BatchFinished posts the terminal record of a batch. Any non-2xx response is
// an error.
func (w *Webhook) BatchFinished(ctx context.Context, rec models.BatchRecord) error {
	body, err := json.Marshal(event{Event: "batch.finished", Batch: rec})
	if err != nil {
		return fmt.Errorf("marshaling webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting to webhook: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}
	return nil
}
