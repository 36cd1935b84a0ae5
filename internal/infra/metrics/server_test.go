package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMuxServesCacheStats(t *testing.T) {
	mux := NewMux(func() (map[string]int, error) {
		return map[string]int{"train": 4, "test": 1}, nil
	}, zap.NewNop())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cache", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"train":4,"test":1}`, rec.Body.String())

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMuxCacheStatsError(t *testing.T) {
	mux := NewMux(func() (map[string]int, error) {
		return nil, errors.New("disk gone")
	}, zap.NewNop())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cache", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMuxWithoutStats(t *testing.T) {
	rec := httptest.NewRecorder()
	NewMux(nil, zap.NewNop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cache", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
