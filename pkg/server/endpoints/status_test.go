package endpoints

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleHealth(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		health := &MockHealthStore{}
		health.On("CheckConnectivity").Return(nil)

		w := httptest.NewRecorder()
		handleHealth(health, func() string { return "development" })(w, httptest.NewRequest("GET", "/health", nil))

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, "development", body["environment"])
		_, err := time.Parse(time.RFC3339, body["timestamp"].(string))
		assert.NoError(t, err)
	})

	t.Run("database down", func(t *testing.T) {
		health := &MockHealthStore{}
		health.On("CheckConnectivity").Return(errors.New("database is locked"))

		w := httptest.NewRecorder()
		handleHealth(health, func() string { return "production" })(w, httptest.NewRequest("GET", "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "error", decodeBody(t, w)["status"])
	})
}

func TestIndex(t *testing.T) {
	s, _ := newMockServer(t, nil)

	w := doRequest(s.Router, "GET", "/api", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Vincent Yu API", body["name"])
	assert.Equal(t, "1.0.0", body["version"])
	assert.Contains(t, body["endpoints"], "/api/blog")
}

func TestNotFound(t *testing.T) {
	s, _ := newMockServer(t, nil)

	tests := []struct {
		method string
		path   string
	}{
		{"GET", "/api/nope"},
		{"PATCH", "/api/blog"},
		{"GET", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := doRequest(s.Router, tt.method, tt.path, nil, "")
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Equal(t, "Route not found: "+tt.method+" "+tt.path, errorMessage(t, w))
		})
	}
}
