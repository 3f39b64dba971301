package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "unistats/internal/errors"
	"unistats/internal/services"
	"unistats/internal/shared/testutil"
)

// MockHealthService is a mock for the HealthService interface
type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) HealthCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) ReadinessCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) LivenessCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) Version() map[string]interface{} {
	return m.Called().Get(0).(map[string]interface{})
}

func (m *MockHealthService) SystemStats(ctx context.Context) (services.SystemStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(services.SystemStats), args.Error(1)
}

func (m *MockHealthService) GetDetailedHealth(ctx context.Context) map[string]interface{} {
	return m.Called(ctx).Get(0).(map[string]interface{})
}

func newHealthRouter(t *testing.T, svc HealthService) (http.Handler, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, logs := testutil.NewTestLogger(t)
	h := NewHealthHandler(svc, logger, apierrors.NewErrorHandler(logger, false))

	r := chi.NewRouter()
	r.Mount("/api/health", h.Routes())
	r.Get("/api/version", h.Version)
	return r, logs
}

func TestHealthHandler_Endpoints(t *testing.T) {
	now := time.Now()
	svc := &MockHealthService{}
	svc.On("HealthCheck", mock.Anything).Return(services.HealthStatus{Status: "ok", Timestamp: now, Version: "1.0.0"})
	svc.On("LivenessCheck", mock.Anything).Return(services.HealthStatus{Status: "alive", Timestamp: now})
	svc.On("Version").Return(map[string]interface{}{"version": "1.0.0"})
	svc.On("SystemStats", mock.Anything).Return(services.SystemStats{Workbooks: 3, WebSocketClients: 2}, nil)
	svc.On("GetDetailedHealth", mock.Anything).Return(map[string]interface{}{"health": "ok"})

	router, _ := newHealthRouter(t, svc)

	tests := []struct {
		name     string
		target   string
		wantKey  string
		wantBody interface{}
	}{
		{name: "health", target: "/api/health", wantKey: "status", wantBody: "ok"},
		{name: "liveness", target: "/api/health/live", wantKey: "status", wantBody: "alive"},
		{name: "version", target: "/api/version", wantKey: "version", wantBody: "1.0.0"},
		{name: "stats", target: "/api/health/stats", wantKey: "workbooks", wantBody: float64(3)},
		{name: "detailed", target: "/api/health/detailed", wantKey: "health", wantBody: "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doGet(t, router, tt.target)
			require.Equal(t, http.StatusOK, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body[tt.wantKey])
		})
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	tests := []struct {
		name       string
		status     string
		wantStatus int
	}{
		{name: "ready", status: "ready", wantStatus: http.StatusOK},
		{name: "not ready", status: "not_ready", wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockHealthService{}
			svc.On("ReadinessCheck", mock.Anything).Return(services.HealthStatus{
				Status: tt.status,
				Services: map[string]services.ServiceHealth{
					"data": {Status: tt.status},
				},
			})

			router, _ := newHealthRouter(t, svc)
			rec := doGet(t, router, "/api/health/ready")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), `"data"`)
		})
	}
}

func TestHealthHandler_StatsError(t *testing.T) {
	svc := &MockHealthService{}
	svc.On("SystemStats", mock.Anything).Return(services.SystemStats{}, errors.New("permission denied"))

	router, logs := newHealthRouter(t, svc)
	rec := doGet(t, router, "/api/health/stats")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, apierrors.TypeInternal, decodeProblem(t, rec)["type"])
	assert.True(t, logs.ContainsMessage("Failed to collect system stats"))
}
