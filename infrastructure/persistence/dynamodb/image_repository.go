package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"plant-backend/application/ports"
	"plant-backend/domain/core/entities"
	pkgerrors "plant-backend/pkg/errors"
)

// batchWriteLimit is the maximum number of requests in one BatchWriteItem call
const batchWriteLimit = 25

// maxBatchAttempts bounds retries of unprocessed batch items
const maxBatchAttempts = 4

// ImageRepository implements ports.ImageRepository using DynamoDB
type ImageRepository struct {
	client  Client
	table   TableConfig
	logger  *zap.Logger
	backoff time.Duration
}

// NewImageRepository creates a new ImageRepository
func NewImageRepository(client Client, table TableConfig, logger *zap.Logger) *ImageRepository {
	return &ImageRepository{client: client, table: table, logger: logger, backoff: 50 * time.Millisecond}
}

var _ ports.ImageRepository = (*ImageRepository)(nil)

// ListByPlant returns the IMAGE# items in the plant's partition
func (r *ImageRepository) ListByPlant(ctx context.Context, plantID string) ([]*entities.Image, error) {
	input, err := partitionQuery(r.table, plantKey(plantID), prefixImage)
	if err != nil {
		return nil, err
	}

	var items []imageItem
	if err := queryAll(ctx, r.client, input, &items); err != nil {
		return nil, pkgerrors.FromDynamoDB("list images", "image", err)
	}

	images := make([]*entities.Image, 0, len(items))
	for _, item := range items {
		images = append(images, item.toEntity())
	}
	return images, nil
}

// GetByID finds the image through the inverted index, then reads the
// base item from the plant partition
func (r *ImageRepository) GetByID(ctx context.Context, imageID string) (*entities.Image, error) {
	input, err := inverseQuery(r.table, imageKey(imageID))
	if err != nil {
		return nil, err
	}
	input.Limit = aws.Int32(1)

	out, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, pkgerrors.FromDynamoDB("get image", "image", err)
	}
	if len(out.Items) == 0 {
		return nil, pkgerrors.ErrImageNotFound.Clone().WithDetail("image_id", imageID)
	}

	pk, _ := out.Items[0]["PK"].(*types.AttributeValueMemberS)
	if pk == nil {
		return nil, fmt.Errorf("image %s has no partition key", imageID)
	}
	got, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table.TableName),
		Key:            itemKey(pk.Value, imageKey(imageID)),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, pkgerrors.FromDynamoDB("get image", "image", err)
	}
	if len(got.Item) == 0 {
		return nil, pkgerrors.ErrImageNotFound.Clone().WithDetail("image_id", imageID)
	}

	var item imageItem
	if err := attributevalue.UnmarshalMap(got.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal image: %w", err)
	}
	return item.toEntity(), nil
}

// Save puts the image item into its plant's partition
func (r *ImageRepository) Save(ctx context.Context, image *entities.Image) error {
	av, err := attributevalue.MarshalMap(newImageItem(image))
	if err != nil {
		return fmt.Errorf("failed to marshal image: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table.TableName),
		Item:      av,
	})
	if err != nil {
		return pkgerrors.FromDynamoDB("save image", "image", err)
	}
	return nil
}

// Delete removes a single image item. A missing item reports not found.
func (r *ImageRepository) Delete(ctx context.Context, image *entities.Image) error {
	exists, err := expression.NewBuilder().
		WithCondition(expression.AttributeExists(expression.Name("PK"))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.table.TableName),
		Key:                      itemKey(plantKey(image.PlantID), imageKey(image.ImageID)),
		ConditionExpression:      exists.Condition(),
		ExpressionAttributeNames: exists.Names(),
	})
	if err != nil {
		if pkgerrors.IsConditionalCheckFailed(err) {
			return pkgerrors.ErrImageNotFound.Clone().
				WithDetail("image_id", image.ImageID).
				WithCause(err)
		}
		return pkgerrors.FromDynamoDB("delete image", "image", err)
	}
	return nil
}

// DeleteBatch removes image items in chunks, retrying unprocessed requests
func (r *ImageRepository) DeleteBatch(ctx context.Context, plantID string, imageIDs []string) error {
	pk := plantKey(plantID)
	for start := 0; start < len(imageIDs); start += batchWriteLimit {
		end := start + batchWriteLimit
		if end > len(imageIDs) {
			end = len(imageIDs)
		}

		requests := make([]types.WriteRequest, 0, end-start)
		for _, id := range imageIDs[start:end] {
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: itemKey(pk, imageKey(id))},
			})
		}

		if err := r.writeBatch(ctx, requests); err != nil {
			return err
		}
	}
	return nil
}

// writeBatch sends requests until every item is processed. Throttled
// calls and unprocessed items are retried with a linear backoff.
func (r *ImageRepository) writeBatch(ctx context.Context, requests []types.WriteRequest) error {
	pending := map[string][]types.WriteRequest{r.table.TableName: requests}

	for attempt := 1; attempt <= maxBatchAttempts; attempt++ {
		out, err := r.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
		switch {
		case err != nil && !pkgerrors.IsThrottled(err):
			return pkgerrors.FromDynamoDB("delete images", "image", err)
		case err != nil:
			if attempt == maxBatchAttempts {
				return pkgerrors.FromDynamoDB("delete images", "image", err)
			}
			r.logger.Debug("Image deletes throttled", zap.Int("attempt", attempt))
		case len(out.UnprocessedItems) == 0:
			return nil
		default:
			pending = out.UnprocessedItems
			r.logger.Debug("Retrying unprocessed image deletes",
				zap.Int("attempt", attempt),
				zap.Int("pending", len(pending[r.table.TableName])),
			)
		}

		select {
		case <-time.After(r.backoff * time.Duration(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("%d image deletes left unprocessed after %d attempts",
		len(pending[r.table.TableName]), maxBatchAttempts)
}
