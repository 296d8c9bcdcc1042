package queries

import (
	pkgerrors "plant-backend/pkg/errors"
)

// GetLineageQuery asks for the leveled lineage graph of one user's collection
type GetLineageQuery struct {
	UserID      string `json:"user_id"`
	RequesterID string `json:"requester_id"`
}

// Validate validates the query
func (q GetLineageQuery) Validate() error {
	if q.UserID == "" {
		return pkgerrors.NewValidationError("user_id is required")
	}
	if q.RequesterID == "" {
		return pkgerrors.NewUnauthorizedError("requester is required")
	}
	return nil
}

// LineageCacheKey is the cache key of a user's built lineage
func LineageCacheKey(userID string) string {
	return "lineage:" + userID
}
