// Package dynamo implements the status store on two DynamoDB tables, one for
// batch records keyed by batch_id and one for per-file records keyed by
// file_path.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/samber/lo"

	"github.com/sftpflow/sftpflow/internal/models"
	"github.com/sftpflow/sftpflow/internal/statestore"
)

// api is the slice of the DynamoDB client the store depends on.
type api interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, opts ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

var _ api = (*dynamodb.Client)(nil)

// Store persists status records in DynamoDB.
type Store struct {
	client     api
	batchTable string
	fileTable  string
	now        func() time.Time
}

var _ statestore.Store = (*Store)(nil)

// New returns a store writing batch records to batchTable and per-file
// records to fileTable.
func New(client api, batchTable, fileTable string) *Store {
	return &Store{
		client:     client,
		batchTable: batchTable,
		fileTable:  fileTable,
		now:        time.Now,
	}
}

func (s *Store) PutBatch(ctx context.Context, rec *models.BatchRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshaling batch record: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.batchTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("putting batch record %s: %w", rec.BatchID, err)
	}
	return nil
}

// OpenBatches scans a single page of the batch table. Records past the first
// page are picked up by a later pass.
func (s *Store) OpenBatches(ctx context.Context) ([]models.BatchRecord, error) {
	open := lo.Map(models.OpenBatchStatuses, func(st models.BatchStatus, _ int) expression.OperandBuilder {
		return expression.Value(st)
	})
	expr, err := expression.NewBuilder().
		WithFilter(expression.Name("status").In(open[0], open[1:]...)).
		Build()
	if err != nil {
		return nil, fmt.Errorf("building batch scan filter: %w", err)
	}

	out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:                 aws.String(s.batchTable),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, fmt.Errorf("scanning batch table: %w", err)
	}

	var recs []models.BatchRecord
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &recs); err != nil {
		return nil, fmt.Errorf("unmarshaling batch records: %w", err)
	}
	return recs, nil
}

func (s *Store) MarkBatchStarted(ctx context.Context, batchID, transferID string, filesTotal int) error {
	update := expression.
		Set(expression.Name("status"), expression.Value(models.BatchTransferStarted)).
		Set(expression.Name("transfer_id"), expression.Value(transferID)).
		Set(expression.Name("files_total"), expression.Value(filesTotal)).
		Set(expression.Name("updated_at"), expression.Value(s.now().UTC()))
	expr, err := expression.NewBuilder().
		WithCondition(expression.Name("status").Equal(expression.Value(models.BatchDiscoveryCompleted))).
		WithUpdate(update).
		Build()
	if err != nil {
		return fmt.Errorf("building batch start update: %w", err)
	}
	return s.updateBatch(ctx, batchID, expr)
}

func (s *Store) CompleteBatch(ctx context.Context, batchID string, out models.BatchOutcome) error {
	update := expression.
		Set(expression.Name("status"), expression.Value(out.Status)).
		Set(expression.Name("files_total"), expression.Value(out.FilesTotal)).
		Set(expression.Name("files_successful"), expression.Value(out.FilesSuccessful)).
		Set(expression.Name("files_failed"), expression.Value(out.FilesFailed)).
		Set(expression.Name("completed_at"), expression.Value(out.CompletedAt)).
		Set(expression.Name("updated_at"), expression.Value(s.now().UTC()))
	if len(out.ErrorMessages) > 0 {
		update = update.Set(expression.Name("error_messages"), expression.Value(out.ErrorMessages))
	}

	open := lo.Map(models.OpenBatchStatuses, func(st models.BatchStatus, _ int) expression.OperandBuilder {
		return expression.Value(st)
	})
	expr, err := expression.NewBuilder().
		WithCondition(expression.Name("status").In(open[0], open[1:]...)).
		WithUpdate(update).
		Build()
	if err != nil {
		return fmt.Errorf("building batch completion update: %w", err)
	}
	return s.updateBatch(ctx, batchID, expr)
}

// updateBatch applies a conditional update, mapping a failed condition to
// ErrBatchNotOpen.
func (s *Store) updateBatch(ctx context.Context, batchID string, expr expression.Expression) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.batchTable),
		Key:                       batchKey(batchID),
		ConditionExpression:       expr.Condition(),
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return statestore.ErrBatchNotOpen
		}
		return fmt.Errorf("updating batch record %s: %w", batchID, err)
	}
	return nil
}

func (s *Store) PendingFiles(ctx context.Context) ([]models.FileRecord, error) {
	return s.scanFiles(ctx, models.FilePending)
}

func (s *Store) MarkFileInProgress(ctx context.Context, filePath, transferID string) error {
	item, err := attributevalue.MarshalMap(models.FileRecord{
		FilePath:   filePath,
		Status:     models.FileInProgress,
		TransferID: transferID,
		UpdatedAt:  s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshaling file record: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.fileTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("putting file record %s: %w", filePath, err)
	}
	return nil
}

func (s *Store) ResetInProgressFiles(ctx context.Context) (int, error) {
	stale, err := s.scanFiles(ctx, models.FileInProgress)
	if err != nil {
		return 0, err
	}

	update := expression.
		Set(expression.Name("status"), expression.Value(models.FilePending)).
		Set(expression.Name("updated_at"), expression.Value(s.now().UTC()))
	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return 0, fmt.Errorf("building file reset update: %w", err)
	}

	reset := 0
	for _, rec := range stale {
		_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:                 aws.String(s.fileTable),
			Key:                       fileKey(rec.FilePath),
			UpdateExpression:          expr.Update(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		})
		if err != nil {
			return reset, fmt.Errorf("resetting file record %s: %w", rec.FilePath, err)
		}
		reset++
	}
	return reset, nil
}

// scanFiles returns a single page of file records in the given status.
func (s *Store) scanFiles(ctx context.Context, status models.FileStatus) ([]models.FileRecord, error) {
	expr, err := expression.NewBuilder().
		WithFilter(expression.Name("status").Equal(expression.Value(status))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("building file scan filter: %w", err)
	}

	out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:                 aws.String(s.fileTable),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, fmt.Errorf("scanning file table: %w", err)
	}

	var recs []models.FileRecord
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &recs); err != nil {
		return nil, fmt.Errorf("unmarshaling file records: %w", err)
	}
	return recs, nil
}

func batchKey(batchID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"batch_id": &types.AttributeValueMemberS{Value: batchID},
	}
}

func fileKey(filePath string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"file_path": &types.AttributeValueMemberS{Value: filePath},
	}
}
