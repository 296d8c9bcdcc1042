package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	validation := NewValidationErrors()
	validation.Add("human_name", "human_name cannot be empty")

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   ErrorType
	}{
		{"app error passes through", NewNotFoundError("plant"), http.StatusNotFound, ErrorTypeNotFound},
		{"wrapped app error", fmt.Errorf("get: %w", NewForbiddenError("")), http.StatusForbidden, ErrorTypeForbidden},
		{"validation errors", validation, http.StatusBadRequest, ErrorTypeValidation},
		{"business rule", ErrSelfParent.Clone(), http.StatusUnprocessableEntity, ErrorTypeUnprocessable},
		{"conflict", ErrDuplicateHumanID.Clone(), http.StatusConflict, ErrorTypeConflict},
		{"unknown error", fmt.Errorf("boom"), http.StatusInternalServerError, ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := Resolve(tt.err)

			require.NotNil(t, appErr)
			assert.Equal(t, tt.wantStatus, appErr.HTTPStatus)
			assert.Equal(t, tt.wantType, appErr.Type)
			assert.Equal(t, tt.wantStatus, StatusCode(tt.err))
		})
	}

	assert.Nil(t, Resolve(nil))
}

func TestResolve_KeepsRetryable(t *testing.T) {
	assert.True(t, Resolve(ErrConcurrentModification.Clone()).Retryable)
	assert.False(t, Resolve(ErrPlantNotFound.Clone()).Retryable)
}

func TestResolve_ValidationDetails(t *testing.T) {
	validation := NewValidationErrors()
	validation.Add("source", "a plant without parents must name its source")

	appErr := Resolve(validation)

	fields, ok := appErr.Details["fields"].(map[string][]string)
	require.True(t, ok)
	assert.Contains(t, fields, "source")
}

func TestFromDynamoDB(t *testing.T) {
	conditional := &smithy.GenericAPIError{Code: "ConditionalCheckFailedException", Message: "failed"}
	throttled := &smithy.GenericAPIError{Code: "ThrottlingException"}
	other := &smithy.GenericAPIError{Code: "ValidationException"}

	assert.True(t, IsConditionalCheckFailed(fmt.Errorf("put: %w", conditional)))
	assert.True(t, IsThrottled(throttled))
	assert.False(t, IsThrottled(other))

	assert.Equal(t, ErrorTypeConflict, FromDynamoDB("PutItem", "plant", conditional).Type)
	assert.Equal(t, ErrorTypeUnavailable, FromDynamoDB("Query", "plant", throttled).Type)
	assert.True(t, FromDynamoDB("Query", "plant", throttled).Retryable)
	assert.False(t, FromDynamoDB("Query", "plant", other).Retryable)
	assert.Equal(t, ErrorTypeDatabase, FromDynamoDB("Query", "plant", other).Type)
	assert.Equal(t, ErrorTypeDatabase, FromDynamoDB("Query", "plant", fmt.Errorf("network")).Type)
	assert.Nil(t, FromDynamoDB("Query", "plant", nil))
}

func TestClone_DoesNotMutateShared(t *testing.T) {
	c := ErrTooManyParents.Clone().WithDetail("max_parents", 3)

	assert.Equal(t, 3, c.Details["max_parents"])
	assert.NotContains(t, ErrTooManyParents.Details, "max_parents")
}
