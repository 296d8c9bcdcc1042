package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	pkgerrors "plant-backend/pkg/errors"
)

// RateLimitStore is the part of the DynamoDB client the distributed limiter uses
type RateLimitStore interface {
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// DistributedRateLimiter counts requests per fixed window in the main table
// so limits hold across Lambda instances
type DistributedRateLimiter struct {
	store     RateLimitStore
	tableName string
	limit     int
	window    time.Duration
	scope     string
	now       func() time.Time
}

// rateLimitEntry is the counter item for one key and window
type rateLimitEntry struct {
	PK    string `dynamodbav:"PK"`
	SK    string `dynamodbav:"SK"`
	Count int    `dynamodbav:"Count"`
	TTL   int64  `dynamodbav:"TTL"`
}

// NewDistributedRateLimiter creates a limiter allowing limit requests per window
func NewDistributedRateLimiter(store RateLimitStore, tableName, scope string, limit int, window time.Duration) *DistributedRateLimiter {
	return &DistributedRateLimiter{
		store:     store,
		tableName: tableName,
		limit:     limit,
		window:    window,
		scope:     scope,
		now:       time.Now,
	}
}

func (r *DistributedRateLimiter) key(key string, windowStart time.Time) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("RATE_LIMIT#%s#%s", r.scope, key)},
		"SK": &types.AttributeValueMemberS{Value: "WINDOW#" + strconv.FormatInt(windowStart.Unix(), 10)},
	}
}

// Allow atomically counts the request and reports whether it fits the window.
// Store failures fail open and are returned for logging.
func (r *DistributedRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if r.store == nil {
		return true, nil
	}

	windowStart := r.now().Truncate(r.window)
	expiresAt := windowStart.Add(r.window).Add(time.Hour).Unix()

	update := expression.Add(expression.Name("Count"), expression.Value(1)).
		Set(expression.Name("TTL"), expression.Value(expiresAt))
	cond := expression.Or(
		expression.AttributeNotExists(expression.Name("Count")),
		expression.Name("Count").LessThan(expression.Value(r.limit)),
	)
	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return true, fmt.Errorf("failed to build rate limit expression: %w", err)
	}

	result, err := r.store.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       r.key(key, windowStart),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if pkgerrors.IsConditionalCheckFailed(err) {
			return false, nil
		}
		return true, fmt.Errorf("rate limiter error (failing open): %w", err)
	}

	var entry rateLimitEntry
	if err := attributevalue.UnmarshalMap(result.Attributes, &entry); err != nil {
		return true, fmt.Errorf("failed to parse rate limit entry (failing open): %w", err)
	}
	return entry.Count <= r.limit, nil
}

// Reset clears the counter of the current window for key
func (r *DistributedRateLimiter) Reset(ctx context.Context, key string) error {
	if r.store == nil {
		return nil
	}
	_, err := r.store.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       r.key(key, r.now().Truncate(r.window)),
	})
	return err
}
