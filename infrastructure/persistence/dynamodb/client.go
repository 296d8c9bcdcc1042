package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Client is the subset of the DynamoDB API the repositories use.
// *dynamodb.Client satisfies it.
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// TableConfig names the table and the inverted index
type TableConfig struct {
	TableName string
	IndexName string
}

// Key prefixes of the single-table layout
const (
	prefixUser    = "USER#"
	prefixPlant   = "PLANT#"
	prefixImage   = "IMAGE#"
	prefixSession = "SESSION_TOKEN#"
	prefixHumanID = "HUMANID#"
)

// Entity types stored in the entity_type attribute
const (
	entityUser    = "user"
	entityPlant   = "plant"
	entityImage   = "image"
	entitySession = "session_token"
	entityHumanID = "human_id"
)

func userKey(googleID string) string   { return prefixUser + googleID }
func plantKey(plantID string) string   { return prefixPlant + plantID }
func imageKey(imageID string) string   { return prefixImage + imageID }
func sessionKey(tokenID string) string { return prefixSession + tokenID }
func humanIDKey(humanID int) string    { return fmt.Sprintf("%s%d", prefixHumanID, humanID) }

func itemKey(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

// queryAll runs a key-condition query across every page and unmarshals the
// items into out, which must be a pointer to a slice
func queryAll(ctx context.Context, client Client, input *dynamodb.QueryInput, out interface{}) error {
	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewQueryPaginator(client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		items = append(items, page.Items...)
	}
	return attributevalue.UnmarshalListOfMaps(items, out)
}

// partitionQuery builds a query for PK = pk AND begins_with(SK, skPrefix)
func partitionQuery(table TableConfig, pk, skPrefix string) (*dynamodb.QueryInput, error) {
	keyEx := expression.Key("PK").Equal(expression.Value(pk)).
		And(expression.Key("SK").BeginsWith(skPrefix))

	expr, err := expression.NewBuilder().WithKeyCondition(keyEx).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	return &dynamodb.QueryInput{
		TableName:                 aws.String(table.TableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}, nil
}

// inverseQuery builds a query on the inverted index for SK = sk
func inverseQuery(table TableConfig, sk string) (*dynamodb.QueryInput, error) {
	keyEx := expression.Key("SK").Equal(expression.Value(sk))

	expr, err := expression.NewBuilder().WithKeyCondition(keyEx).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	return &dynamodb.QueryInput{
		TableName:                 aws.String(table.TableName),
		IndexName:                 aws.String(table.IndexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}, nil
}

func unmarshalItems(items []map[string]types.AttributeValue, out interface{}) error {
	if err := attributevalue.UnmarshalListOfMaps(items, out); err != nil {
		return fmt.Errorf("failed to unmarshal items: %w", err)
	}
	return nil
}

// HealthChecker probes the table for the readiness endpoint
type HealthChecker struct {
	client Client
	table  TableConfig
}

// NewHealthChecker creates a health checker
func NewHealthChecker(client Client, table TableConfig) *HealthChecker {
	return &HealthChecker{client: client, table: table}
}

// Check issues a read for a key that never exists. Any error means the
// table is unreachable or misconfigured.
func (h *HealthChecker) Check(ctx context.Context) error {
	_, err := h.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(h.table.TableName),
		Key:       itemKey(prefixUser+"__health__", prefixUser+"__health__"),
	})
	if err != nil {
		return fmt.Errorf("dynamodb table %s: %w", h.table.TableName, err)
	}
	return nil
}
