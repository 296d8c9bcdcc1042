package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// MaxBodyBytes bounds request bodies decoded by ParseJSONBody
const MaxBodyBytes = 1 << 20

// HealthResponse is the body of the health and readiness probes
type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Version   string            `json:"version,omitempty"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// NewHealthResponse builds a probe body stamped with the current time
func NewHealthResponse(status, service, version string) HealthResponse {
	return HealthResponse{
		Status:    status,
		Service:   service,
		Version:   version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// RespondJSON writes data as the JSON response body
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

// RespondNoContent writes an empty 204 response
func RespondNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// ExtractRequestID returns the request id assigned by the router, falling
// back to the inbound headers
func ExtractRequestID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	return r.Header.Get("X-Amzn-Trace-Id")
}

// ErrEmptyBody is returned when a JSON body is required but missing
var ErrEmptyBody = errors.New("request body is empty")

// ParseJSONBody decodes a JSON request body with a size limit, rejecting
// unknown fields and trailing data
func ParseJSONBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if decoder.More() {
		return errors.New("invalid JSON body: unexpected trailing data")
	}
	return nil
}
