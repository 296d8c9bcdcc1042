package errors

import (
	"errors"
	"net/http"
)

// Resolve converts any error into an AppError so the HTTP layer can
// render it. Domain errors keep their status; unknown errors become
// internal errors wrapping the original.
func Resolve(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr := resolveKnown(err); appErr != nil {
		return appErr
	}
	return NewInternalError("An internal error occurred").WithCause(err)
}

// resolveKnown converts typed errors and returns nil for anything else
func resolveKnown(err error) *AppError {
	if appErr := GetAppError(err); appErr != nil {
		return appErr
	}

	var validationErrs *ValidationErrors
	if errors.As(err, &validationErrs) {
		appErr := NewValidationError(validationErrs.Error())
		appErr.Details = map[string]interface{}{"fields": validationErrs.ToMap()}
		return appErr.WithCause(err)
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return &AppError{
			Type:       domainTypeToErrorType(domainErr.Type),
			Message:    domainErr.Message,
			Code:       domainErr.Code,
			Details:    domainErr.Details,
			Cause:      err,
			HTTPStatus: domainErr.StatusCode,
			Retryable:  domainErr.Retryable,
		}
	}

	return nil
}

func domainTypeToErrorType(t DomainErrorType) ErrorType {
	switch t {
	case DomainValidationError:
		return ErrorTypeValidation
	case DomainBusinessRuleError:
		return ErrorTypeUnprocessable
	case DomainNotFoundError:
		return ErrorTypeNotFound
	case DomainConflictError:
		return ErrorTypeConflict
	case DomainAuthenticationError:
		return ErrorTypeUnauthorized
	case DomainAuthorizationError:
		return ErrorTypeForbidden
	case DomainRateLimitError:
		return ErrorTypeRateLimit
	case DomainTimeoutError:
		return ErrorTypeTimeout
	default:
		return ErrorTypeInternal
	}
}

// StatusCode returns the HTTP status for err
func StatusCode(err error) int {
	if appErr := Resolve(err); appErr != nil && appErr.HTTPStatus != 0 {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}
