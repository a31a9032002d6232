package httputil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Expression string `json:"expression"`
	}

	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty", "", "Request body is required"},
		{"malformed", "{", MsgInvalidJSON},
		{"wrong type", `{"expression": 5}`, MsgInvalidJSON},
		{"too large", `{"expression":"` + strings.Repeat("1", MaxBodyBytes) + `"}`, "Request body too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			err := DecodeJSON(httptest.NewRecorder(), req, &p)
			ve, ok := IsValidation(err)
			require.True(t, ok, "expected validation error, got %v", err)
			assert.Equal(t, tt.want, ve.Message)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"expression":"1+1","extra":true}`))
	var p payload
	require.NoError(t, DecodeJSON(httptest.NewRecorder(), req, &p))
	assert.Equal(t, "1+1", p.Expression)
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, http.StatusTeapot, "short and stout")

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"short and stout"}`, w.Body.String())
}

func TestNotFound(t *testing.T) {
	w := httptest.NewRecorder()
	NotFound(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Route not found"}`, w.Body.String())
}
