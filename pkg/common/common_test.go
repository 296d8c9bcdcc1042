package common

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSONBody(t *testing.T) {
	type body struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		payload string
		wantErr bool
		want    string
	}{
		{name: "valid", payload: `{"name":"fern"}`, want: "fern"},
		{name: "empty", payload: ``, wantErr: true},
		{name: "unknown field", payload: `{"name":"fern","color":"green"}`, wantErr: true},
		{name: "trailing data", payload: `{"name":"fern"} {}`, wantErr: true},
		{name: "too large", payload: `{"name":"` + strings.Repeat("a", MaxBodyBytes) + `"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.payload))
			var got body
			err := ParseJSONBody(httptest.NewRecorder(), r, &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestRespondJSON(t *testing.T) {
	w := httptest.NewRecorder()
	RespondJSON(w, http.StatusCreated, map[string]int{"human_id": 3})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"human_id":3}`, w.Body.String())
}

func TestExtractRequestID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, ExtractRequestID(r))

	r.Header.Set("X-Amzn-Trace-Id", "Root=1-abc")
	assert.Equal(t, "Root=1-abc", ExtractRequestID(r))

	r.Header.Set("X-Request-ID", "from-header")
	assert.Equal(t, "from-header", ExtractRequestID(r))

	r = r.WithContext(context.WithValue(r.Context(), middleware.RequestIDKey, "from-router"))
	assert.Equal(t, "from-router", ExtractRequestID(r))
}
