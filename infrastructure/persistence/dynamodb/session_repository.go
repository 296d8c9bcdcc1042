package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"

	"plant-backend/application/ports"
	"plant-backend/domain/core/entities"
	pkgerrors "plant-backend/pkg/errors"
)

// SessionRepository implements ports.SessionRepository using DynamoDB
type SessionRepository struct {
	client Client
	table  TableConfig
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(client Client, table TableConfig) *SessionRepository {
	return &SessionRepository{client: client, table: table}
}

var _ ports.SessionRepository = (*SessionRepository)(nil)

// GetByID loads the session item keyed by the cookie value
func (r *SessionRepository) GetByID(ctx context.Context, tokenID string) (*entities.SessionToken, error) {
	input, err := partitionQuery(r.table, sessionKey(tokenID), prefixUser)
	if err != nil {
		return nil, err
	}
	input.Limit = aws.Int32(1)

	out, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, pkgerrors.FromDynamoDB("get session", "session", err)
	}
	if len(out.Items) == 0 {
		return nil, pkgerrors.NewNotFoundError("session")
	}

	var items []sessionItem
	if err := unmarshalItems(out.Items, &items); err != nil {
		return nil, err
	}
	return items[0].toEntity(), nil
}
