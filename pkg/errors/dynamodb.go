package errors

import (
	"errors"

	"github.com/aws/smithy-go"
)

// DynamoDB error codes the repositories react to
const (
	codeConditionalCheckFailed = "ConditionalCheckFailedException"
	codeResourceNotFound       = "ResourceNotFoundException"
	codeThroughputExceeded     = "ProvisionedThroughputExceededException"
	codeThrottling             = "ThrottlingException"
	codeTransactionCanceled    = "TransactionCanceledException"
)

// APIErrorCode returns the AWS error code carried by err, or "".
func APIErrorCode(err error) string {
	var ae smithy.APIError
	if errors.As(err, &ae) {
		return ae.ErrorCode()
	}
	return ""
}

// IsConditionalCheckFailed reports whether a conditional write was rejected
func IsConditionalCheckFailed(err error) bool {
	return APIErrorCode(err) == codeConditionalCheckFailed
}

// IsThrottled reports whether DynamoDB refused the request for capacity reasons
func IsThrottled(err error) bool {
	switch APIErrorCode(err) {
	case codeThroughputExceeded, codeThrottling:
		return true
	}
	return false
}

// FromDynamoDB maps a DynamoDB client error onto an AppError
func FromDynamoDB(operation, resource string, err error) *AppError {
	if err == nil {
		return nil
	}

	var ae smithy.APIError
	if !errors.As(err, &ae) {
		return NewDatabaseError(operation, err)
	}
	if IsThrottled(err) {
		return NewUnavailableError("dynamodb").
			WithCode(ae.ErrorCode()).
			WithCause(err).
			WithRetryable(true)
	}

	switch ae.ErrorCode() {
	case codeConditionalCheckFailed, codeTransactionCanceled:
		return NewConflictError(resource + " was modified by another request").
			WithCode(ae.ErrorCode()).
			WithCause(err)
	case codeResourceNotFound:
		return NewUnavailableError("dynamodb").WithCode(ae.ErrorCode()).WithCause(err)
	default:
		return NewDatabaseError(operation, err).WithCode(ae.ErrorCode())
	}
}
