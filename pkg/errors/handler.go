package errors

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"plant-backend/pkg/common"
)

// retryAfterSeconds is advertised on responses a client may retry
const retryAfterSeconds = 1

// ErrorResponse is the JSON body of every error response
type ErrorResponse struct {
	Error     bool                   `json:"error"`
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Code      string                 `json:"code,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	TraceID   string                 `json:"trace_id,omitempty"`
}

// ErrorHandler renders errors as JSON responses and logs them
type ErrorHandler struct {
	logger *zap.Logger
	debug  bool
}

// NewErrorHandler creates a new error handler. In debug mode responses
// carry stack traces and the text of unclassified errors.
func NewErrorHandler(logger *zap.Logger, debug bool) *ErrorHandler {
	return &ErrorHandler{logger: logger, debug: debug}
}

// Handle resolves err and writes the matching response
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	appErr := Resolve(err)
	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}

	body := h.newResponse(r, string(appErr.Type), appErr.Message)
	body.Code = appErr.Code
	body.Details = appErr.Details

	if h.debug {
		if appErr.Type == ErrorTypeInternal && appErr.Cause != nil {
			body.Message = appErr.Cause.Error()
		}
		if appErr.StackTrace != "" {
			details := make(map[string]interface{}, len(body.Details)+1)
			for k, v := range body.Details {
				details[k] = v
			}
			details["stack_trace"] = appErr.StackTrace
			body.Details = details
		}
	}

	h.log(r, status, appErr.Message, appErr.logFields()...)
	h.write(w, status, appErr.Retryable, body)
}

// HandleStatus writes an error response for a status without an error value
func (h *ErrorHandler) HandleStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.log(r, status, message)
	retryable := status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
	h.write(w, status, retryable, h.newResponse(r, statusToErrorType(status), message))
}

func (h *ErrorHandler) newResponse(r *http.Request, errType, message string) ErrorResponse {
	return ErrorResponse{
		Error:     true,
		Type:      errType,
		Message:   message,
		RequestID: common.ExtractRequestID(r),
		TraceID:   r.Header.Get("X-Amzn-Trace-Id"),
	}
}

func (h *ErrorHandler) log(r *http.Request, status int, message string, extra ...zap.Field) {
	fields := append([]zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("request_id", common.ExtractRequestID(r)),
	}, extra...)

	if status >= http.StatusInternalServerError {
		h.logger.Error(message, fields...)
		return
	}
	h.logger.Warn(message, fields...)
}

func (h *ErrorHandler) write(w http.ResponseWriter, status int, retryable bool, body ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	if retryable {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	}
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode error response", zap.Error(err))
	}
}

func (e *AppError) logFields() []zap.Field {
	fields := []zap.Field{zap.String("error_type", string(e.Type))}
	if e.Code != "" {
		fields = append(fields, zap.String("error_code", e.Code))
	}
	if e.Cause != nil {
		fields = append(fields, zap.Error(e.Cause))
	}
	if len(e.Details) > 0 {
		fields = append(fields, zap.Any("details", e.Details))
	}
	return fields
}

func statusToErrorType(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return string(ErrorTypeValidation)
	case http.StatusUnauthorized:
		return string(ErrorTypeUnauthorized)
	case http.StatusForbidden:
		return string(ErrorTypeForbidden)
	case http.StatusNotFound:
		return string(ErrorTypeNotFound)
	case http.StatusConflict:
		return string(ErrorTypeConflict)
	case http.StatusTooManyRequests:
		return string(ErrorTypeRateLimit)
	case http.StatusServiceUnavailable:
		return string(ErrorTypeUnavailable)
	default:
		return string(ErrorTypeInternal)
	}
}
