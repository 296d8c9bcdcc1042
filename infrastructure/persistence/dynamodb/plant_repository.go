package dynamodb

import (
	"context"
	"fmt"

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

// PlantRepository implements ports.PlantRepository using DynamoDB.
// Each plant lives in its owner's partition next to a HUMANID# guard item
// that keeps human ids unique per user.
type PlantRepository struct {
	client Client
	table  TableConfig
	logger *zap.Logger
}

// NewPlantRepository creates a new PlantRepository
func NewPlantRepository(client Client, table TableConfig, logger *zap.Logger) *PlantRepository {
	return &PlantRepository{client: client, table: table, logger: logger}
}

var _ ports.PlantRepository = (*PlantRepository)(nil)

// Create writes the plant and its human id guard in one transaction
func (r *PlantRepository) Create(ctx context.Context, plant *entities.Plant) error {
	plantAV, err := attributevalue.MarshalMap(newPlantItem(plant))
	if err != nil {
		return fmt.Errorf("failed to marshal plant: %w", err)
	}
	guardAV, err := attributevalue.MarshalMap(humanIDItem{
		PK:         userKey(plant.UserID()),
		SK:         humanIDKey(plant.HumanID()),
		EntityType: entityHumanID,
		PlantID:    plant.ID(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal human id guard: %w", err)
	}

	notExists, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name("PK"))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:                aws.String(r.table.TableName),
				Item:                     plantAV,
				ConditionExpression:      notExists.Condition(),
				ExpressionAttributeNames: notExists.Names(),
			}},
			{Put: &types.Put{
				TableName:                aws.String(r.table.TableName),
				Item:                     guardAV,
				ConditionExpression:      notExists.Condition(),
				ExpressionAttributeNames: notExists.Names(),
			}},
		},
	})
	if err != nil {
		r.logger.Warn("Failed to create plant",
			zap.String("plantID", plant.ID()),
			zap.Int("humanID", plant.HumanID()),
			zap.Error(err),
		)
		return pkgerrors.FromDynamoDB("create plant", "plant", err)
	}

	r.logger.Debug("Plant stored",
		zap.String("plantID", plant.ID()),
		zap.String("userID", plant.UserID()),
	)
	return nil
}

// Update writes the mutable fields, guarded by the previous version
func (r *PlantRepository) Update(ctx context.Context, plant *entities.Plant) error {
	item := newPlantItem(plant)

	update := expression.Set(expression.Name("human_name"), expression.Value(item.HumanName)).
		Set(expression.Name("updated_at"), expression.Value(item.UpdatedAt)).
		Set(expression.Name("version"), expression.Value(item.Version))
	update = setOrRemove(update, "species", item.Species)
	update = setOrRemove(update, "location", item.Location)
	update = setOrRemove(update, "source", item.Source)
	update = setOrRemove(update, "source_date", item.SourceDate)
	update = setOrRemove(update, "sink", item.Sink)
	update = setOrRemove(update, "sink_date", item.SinkDate)
	update = setOrRemove(update, "notes", item.Notes)
	if len(item.ParentIDs) > 0 {
		update = update.Set(expression.Name("parent_id"), expression.Value(item.ParentIDs))
	} else {
		update = update.Remove(expression.Name("parent_id"))
	}

	condition := expression.Equal(expression.Name("version"), expression.Value(plant.Version()-1))

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(condition).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table.TableName),
		Key:                       itemKey(item.PK, item.SK),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if pkgerrors.IsConditionalCheckFailed(err) {
			return pkgerrors.ErrConcurrentModification.Clone().
				WithDetail("plant_id", plant.ID()).
				WithCause(err)
		}
		return pkgerrors.FromDynamoDB("update plant", "plant", err)
	}
	return nil
}

// GetByID finds a plant through the inverted index
func (r *PlantRepository) GetByID(ctx context.Context, plantID string) (*entities.Plant, error) {
	input, err := inverseQuery(r.table, plantKey(plantID))
	if err != nil {
		return nil, err
	}
	input.Limit = aws.Int32(1)

	out, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, pkgerrors.FromDynamoDB("get plant", "plant", err)
	}
	if len(out.Items) == 0 {
		return nil, pkgerrors.ErrPlantNotFound.Clone().WithDetail("plant_id", plantID)
	}

	// The index is eventually consistent; read the base item so a write
	// is visible to the next read
	pk, _ := out.Items[0]["PK"].(*types.AttributeValueMemberS)
	if pk == nil {
		return nil, fmt.Errorf("plant %s has no partition key", plantID)
	}
	got, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table.TableName),
		Key:            itemKey(pk.Value, plantKey(plantID)),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, pkgerrors.FromDynamoDB("get plant", "plant", err)
	}
	if len(got.Item) == 0 {
		return nil, pkgerrors.ErrPlantNotFound.Clone().WithDetail("plant_id", plantID)
	}

	var item plantItem
	if err := attributevalue.UnmarshalMap(got.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plant: %w", err)
	}
	return item.toEntity()
}

// GetByHumanID finds a plant by its user-scoped human id
func (r *PlantRepository) GetByHumanID(ctx context.Context, userID string, humanID int) (*entities.Plant, error) {
	keyEx := expression.Key("PK").Equal(expression.Value(userKey(userID))).
		And(expression.Key("SK").BeginsWith(prefixPlant))
	filter := expression.Name("human_id").Equal(expression.Value(humanID))

	expr, err := expression.NewBuilder().
		WithKeyCondition(keyEx).
		WithFilter(filter).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	var items []plantItem
	err = queryAll(ctx, r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.table.TableName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ConsistentRead:            aws.Bool(true),
	}, &items)
	if err != nil {
		return nil, pkgerrors.FromDynamoDB("get plant by human id", "plant", err)
	}
	if len(items) == 0 {
		return nil, pkgerrors.ErrPlantNotFound.Clone().
			WithDetail("user_id", userID).
			WithDetail("human_id", humanID)
	}
	if len(items) > 1 {
		r.logger.Warn("Duplicate human id in collection",
			zap.String("userID", userID),
			zap.Int("humanID", humanID),
			zap.Int("count", len(items)),
		)
	}
	return items[0].toEntity()
}

// ListByUser returns every plant in the user's partition
func (r *PlantRepository) ListByUser(ctx context.Context, userID string) ([]*entities.Plant, error) {
	input, err := partitionQuery(r.table, userKey(userID), prefixPlant)
	if err != nil {
		return nil, err
	}

	var items []plantItem
	if err := queryAll(ctx, r.client, input, &items); err != nil {
		return nil, pkgerrors.FromDynamoDB("list plants", "plant", err)
	}

	plants := make([]*entities.Plant, 0, len(items))
	for _, item := range items {
		p, err := item.toEntity()
		if err != nil {
			return nil, err
		}
		plants = append(plants, p)
	}
	return plants, nil
}

// Delete removes the plant and releases its human id
func (r *PlantRepository) Delete(ctx context.Context, plant *entities.Plant) error {
	exists, err := expression.NewBuilder().
		WithCondition(expression.AttributeExists(expression.Name("PK"))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	pk := userKey(plant.UserID())
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Delete: &types.Delete{
				TableName:                aws.String(r.table.TableName),
				Key:                      itemKey(pk, plantKey(plant.ID())),
				ConditionExpression:      exists.Condition(),
				ExpressionAttributeNames: exists.Names(),
			}},
			{Delete: &types.Delete{
				TableName: aws.String(r.table.TableName),
				Key:       itemKey(pk, humanIDKey(plant.HumanID())),
			}},
		},
	})
	if err != nil {
		if pkgerrors.APIErrorCode(err) == "TransactionCanceledException" {
			return pkgerrors.ErrPlantNotFound.Clone().
				WithDetail("plant_id", plant.ID()).
				WithCause(err)
		}
		return pkgerrors.FromDynamoDB("delete plant", "plant", err)
	}
	return nil
}

// setOrRemove sets a string attribute, or removes it when empty
func setOrRemove(update expression.UpdateBuilder, name, value string) expression.UpdateBuilder {
	if value == "" {
		return update.Remove(expression.Name(name))
	}
	return update.Set(expression.Name(name), expression.Value(value))
}
