// Package secrets fetches SFTP credentials stored as JSON in AWS Secrets
// Manager.
package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// Credentials is the JSON document kept in the secret.
type Credentials struct {
	Username   string `json:"username"`
	Password   string `json:"password,omitempty"`
	PrivateKey string `json:"private_key,omitempty"`
	Passphrase string `json:"passphrase,omitempty"`
}

// Validate checks the document can actually authenticate a session.
func (c *Credentials) Validate() error {
	if c.Username == "" {
		return errors.New("credentials missing username")
	}
	if c.Password == "" && c.PrivateKey == "" {
		return errors.New("credentials missing both password and private key")
	}
	return nil
}

// api is the slice of the Secrets Manager client the fetcher depends on.
type api interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, opts ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

var _ api = (*secretsmanager.Client)(nil)

// Fetcher resolves secret ids to SFTP credentials.
type Fetcher struct {
	client api
}

func NewFetcher(client api) *Fetcher {
	return &Fetcher{client: client}
}

// Fetch retrieves and parses the secret. String secrets are preferred; binary
// secrets are accepted as raw JSON bytes.
func (f *Fetcher) Fetch(ctx context.Context, secretID string) (*Credentials, error) {
	out, err := f.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching secret %s: %w", secretID, err)
	}

	raw := []byte(aws.ToString(out.SecretString))
	if len(raw) == 0 {
		raw = out.SecretBinary
	}

	var creds Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return nil, fmt.Errorf("parsing secret %s: %w", secretID, err)
	}
	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("secret %s: %w", secretID, err)
	}
	return &creds, nil
}
