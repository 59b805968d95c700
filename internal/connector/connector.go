// Package connector drives AWS Transfer Family SFTP connector operations:
// starting file transfers, listing remote directories and reading back
// per-file transfer results.
package connector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/transfer"
	"github.com/aws/aws-sdk-go-v2/service/transfer/types"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/sftpflow/sftpflow/internal/models"
	"github.com/sftpflow/sftpflow/internal/objstore"
)

// ErrListingTimeout is returned when a directory listing's output file never
// appeared in the bucket within the polling budget.
var ErrListingTimeout = errors.New("timed out waiting for directory listing output")

// api is the slice of the Transfer Family client the wrapper depends on.
type api interface {
	StartFileTransfer(ctx context.Context, in *transfer.StartFileTransferInput, opts ...func(*transfer.Options)) (*transfer.StartFileTransferOutput, error)
	StartDirectoryListing(ctx context.Context, in *transfer.StartDirectoryListingInput, opts ...func(*transfer.Options)) (*transfer.StartDirectoryListingOutput, error)
	ListFileTransferResults(ctx context.Context, in *transfer.ListFileTransferResultsInput, opts ...func(*transfer.Options)) (*transfer.ListFileTransferResultsOutput, error)
}

var _ api = (*transfer.Client)(nil)

// downloader is the bucket surface used to read listing output.
type downloader interface {
	Name() string
	Download(ctx context.Context, key string) ([]byte, error)
}

// ListingConfig controls directory listings and the polling for their output
// file.
type ListingConfig struct {
	// OutputPrefix is the bucket key prefix listing output is written under.
	OutputPrefix string
	MaxItems     int32
	PollInterval time.Duration
	MaxAttempts  int
}

func (c ListingConfig) withDefaults() ListingConfig {
	if c.OutputPrefix == "" {
		c.OutputPrefix = "listings"
	}
	if c.MaxItems <= 0 {
		c.MaxItems = 1000
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 2 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 30
	}
	return c
}

// Client wraps the Transfer Family API for a service that may drive several
// connectors; the connector id is passed per call.
type Client struct {
	api     api
	bucket  downloader
	listing ListingConfig
}

func New(client api, bucket downloader, listing ListingConfig) *Client {
	return &Client{api: client, bucket: bucket, listing: listing.withDefaults()}
}

// StartRetrieve asks the connector to pull remotePaths from the remote server
// into localDir under the bucket. Returns the transfer id.
func (c *Client) StartRetrieve(ctx context.Context, connectorID string, remotePaths []string, localDir string) (string, error) {
	out, err := c.api.StartFileTransfer(ctx, &transfer.StartFileTransferInput{
		ConnectorId:        aws.String(connectorID),
		RetrieveFilePaths:  remotePaths,
		LocalDirectoryPath: aws.String(localDir),
	})
	if err != nil {
		return "", fmt.Errorf("starting retrieve transfer: %w", err)
	}
	return aws.ToString(out.TransferId), nil
}

// StartSend asks the connector to push localPaths from the bucket to the
// remote server, into remoteDir when given and the connector's home directory
// otherwise. Returns the transfer id.
func (c *Client) StartSend(ctx context.Context, connectorID string, localPaths []string, remoteDir string) (string, error) {
	in := &transfer.StartFileTransferInput{
		ConnectorId:   aws.String(connectorID),
		SendFilePaths: localPaths,
	}
	if remoteDir != "" {
		in.RemoteDirectoryPath = aws.String(remoteDir)
	}
	out, err := c.api.StartFileTransfer(ctx, in)
	if err != nil {
		return "", fmt.Errorf("starting send transfer: %w", err)
	}
	return aws.ToString(out.TransferId), nil
}

// TransferResults pages through the per-file results of a transfer.
func (c *Client) TransferResults(ctx context.Context, connectorID, transferID string) ([]models.FileResult, error) {
	var results []models.FileResult
	var next *string
	for {
		out, err := c.api.ListFileTransferResults(ctx, &transfer.ListFileTransferResultsInput{
			ConnectorId: aws.String(connectorID),
			TransferId:  aws.String(transferID),
			NextToken:   next,
		})
		if err != nil {
			return nil, fmt.Errorf("listing results for transfer %s: %w", transferID, err)
		}
		for _, r := range out.FileTransferResults {
			results = append(results, models.FileResult{
				Path:           aws.ToString(r.FilePath),
				StatusCode:     resultCode(r.StatusCode),
				FailureMessage: aws.ToString(r.FailureMessage),
			})
		}
		if out.NextToken == nil {
			return results, nil
		}
		next = out.NextToken
	}
}

func resultCode(s types.TransferTableStatus) models.ResultCode {
	switch s {
	case types.TransferTableStatusCompleted:
		return models.ResultCompleted
	case types.TransferTableStatusFailed:
		return models.ResultFailed
	case types.TransferTableStatusInProgress:
		return models.ResultInProgress
	default:
		return models.ResultQueued
	}
}

type listingEntry struct {
	FilePath string `json:"filePath"`
}

// listingManifest is the JSON document the connector writes to the bucket.
// paths holds the subdirectory entries, which the caller never transfers.
type listingManifest struct {
	Files     []listingEntry `json:"files"`
	Paths     []listingEntry `json:"paths"`
	Truncated bool           `json:"truncated"`
}

// ListDirectory starts a listing of remoteDir, polls the bucket until the
// connector writes the output file and returns the file paths it names.
// Subdirectory entries are excluded.
func (c *Client) ListDirectory(ctx context.Context, connectorID, remoteDir string) ([]string, error) {
	out, err := c.api.StartDirectoryListing(ctx, &transfer.StartDirectoryListingInput{
		ConnectorId:         aws.String(connectorID),
		RemoteDirectoryPath: aws.String(remoteDir),
		OutputDirectoryPath: aws.String("/" + path.Join(c.bucket.Name(), c.listing.OutputPrefix)),
		MaxItems:            aws.Int32(c.listing.MaxItems),
	})
	if err != nil {
		return nil, fmt.Errorf("starting directory listing: %w", err)
	}

	key := path.Join(c.listing.OutputPrefix, aws.ToString(out.OutputFileName))
	zap.S().Debugw("waiting for directory listing output",
		"listing_id", aws.ToString(out.ListingId),
		"key", key,
	)

	data, err := c.waitForOutput(ctx, key)
	if err != nil {
		return nil, err
	}

	var manifest listingManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parsing listing output %s: %w", key, err)
	}
	if manifest.Truncated {
		zap.S().Warnw("directory listing truncated", "dir", remoteDir, "max_items", c.listing.MaxItems)
	}

	return lo.Map(manifest.Files, func(e listingEntry, _ int) string { return e.FilePath }), nil
}

func (c *Client) waitForOutput(ctx context.Context, key string) ([]byte, error) {
	for attempt := 0; attempt < c.listing.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.listing.PollInterval):
			}
		}
		data, err := c.bucket.Download(ctx, key)
		if errors.Is(err, objstore.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return data, nil
	}
	return nil, ErrListingTimeout
}
