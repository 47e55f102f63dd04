package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStoreHealth struct {
	err error
}

func (f *fakeStoreHealth) HealthCheck(ctx context.Context) error {
	return f.err
}

func TestHealthHandler_Healthy(t *testing.T) {
	router := newTestRouter(RouterConfig{
		Health: NewHealthHandler(&fakeStoreHealth{}, nil),
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response["status"])

	details := response["details"].(map[string]interface{})
	assert.Equal(t, "up", details["qdrant"])
}

func TestHealthHandler_StoreDown(t *testing.T) {
	router := newTestRouter(RouterConfig{
		Health: NewHealthHandler(&fakeStoreHealth{err: errors.New("connection refused")}, nil),
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "degraded", response["status"])

	details := response["details"].(map[string]interface{})
	assert.Equal(t, "connection refused", details["qdrant"])
}

func TestHealthHandler_RootAlias(t *testing.T) {
	router := newTestRouter(RouterConfig{
		Health: NewHealthHandler(&fakeStoreHealth{}, nil),
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
