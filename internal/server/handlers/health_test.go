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

type stubChecker struct {
	err error
}

func (s stubChecker) CheckHealth(ctx context.Context) error {
	return s.err
}

func TestHealthHandlerReturnsHealthyStatus(t *testing.T) {
	manager := NewHealthManager("1.2.3")
	manager.RegisterChecker("registry", stubChecker{})

	rec := httptest.NewRecorder()
	manager.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.Equal(t, StatusHealthy, resp.Checks["registry"])
}

func TestHealthHandlerReturnsServiceUnavailableWhenUnhealthy(t *testing.T) {
	manager := NewHealthManager("1.2.3")
	manager.RegisterChecker("preview_cache", CheckerFunc(func(context.Context) error {
		return errors.New("down")
	}))

	rec := httptest.NewRecorder()
	manager.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp struct {
		Error struct {
			Code    string                 `json:"code"`
			Details map[string]interface{} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "SERVICE_UNAVAILABLE", resp.Error.Code)

	checks, ok := resp.Error.Details["checks"].(map[string]interface{})
	require.True(t, ok, "expected checks in error details")
	assert.Equal(t, StatusUnhealthy, checks["preview_cache"])
}

func TestProbesShareChecks(t *testing.T) {
	manager := NewHealthManager("dev")
	manager.RegisterChecker("registry", stubChecker{})

	for _, handler := range []http.HandlerFunc{manager.LivenessHandler, manager.ReadinessHandler, manager.StartupHandler} {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ProbeResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, StatusHealthy, resp.Status)
	}

	manager.RegisterChecker("broken", stubChecker{err: errors.New("x")})
	rec := httptest.NewRecorder()
	manager.ReadinessHandler(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestExpiredContextMarksTimeout(t *testing.T) {
	manager := NewHealthManager("dev")
	manager.RegisterChecker("registry", stubChecker{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	checks := manager.runHealthChecks(ctx)
	assert.Equal(t, StatusTimeout, checks["registry"])
	assert.Equal(t, StatusDegraded, manager.determineOverallStatus(checks))
}
