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

// UserRepository implements ports.UserRepository using DynamoDB
type UserRepository struct {
	client Client
	table  TableConfig
	logger *zap.Logger
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(client Client, table TableConfig, logger *zap.Logger) *UserRepository {
	return &UserRepository{client: client, table: table, logger: logger}
}

var _ ports.UserRepository = (*UserRepository)(nil)

// GetByID loads the USER# item of a google id
func (r *UserRepository) GetByID(ctx context.Context, googleID string) (*entities.User, error) {
	if googleID == "" {
		return nil, pkgerrors.ErrUserNotFound.Clone()
	}

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table.TableName),
		Key:            itemKey(userKey(googleID), userKey(googleID)),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, pkgerrors.FromDynamoDB("get user", "user", err)
	}
	if len(out.Item) == 0 {
		return nil, pkgerrors.ErrUserNotFound.Clone().WithDetail("user_id", googleID)
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return item.toEntity()
}

// List scans for every item whose PK and SK both start with USER#
func (r *UserRepository) List(ctx context.Context) ([]*entities.User, error) {
	filter := expression.BeginsWith(expression.Name("PK"), prefixUser).
		And(expression.BeginsWith(expression.Name("SK"), prefixUser))

	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                 aws.String(r.table.TableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	var raw []map[string]types.AttributeValue
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.FromDynamoDB("list users", "user", err)
		}
		raw = append(raw, page.Items...)
	}

	var items []userItem
	if err := attributevalue.UnmarshalListOfMaps(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal users: %w", err)
	}

	users := make([]*entities.User, 0, len(items))
	for _, item := range items {
		u, err := item.toEntity()
		if err != nil {
			r.logger.Warn("Skipping malformed user item", zap.Error(err))
			continue
		}
		users = append(users, u)
	}
	return users, nil
}

// UpdateVisibility stores the is_public_profile flag of an existing user
func (r *UserRepository) UpdateVisibility(ctx context.Context, user *entities.User) error {
	expr, err := expression.NewBuilder().
		WithUpdate(expression.Set(expression.Name("is_public_profile"), expression.Value(user.IsPublic()))).
		WithCondition(expression.AttributeExists(expression.Name("PK"))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	key := userKey(user.GoogleID())
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table.TableName),
		Key:                       itemKey(key, key),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if pkgerrors.IsConditionalCheckFailed(err) {
			return pkgerrors.ErrUserNotFound.Clone().
				WithDetail("user_id", user.GoogleID()).
				WithCause(err)
		}
		return pkgerrors.FromDynamoDB("update user visibility", "user", err)
	}
	return nil
}
