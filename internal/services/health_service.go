package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"unistats/internal/dataprocessing"
	"unistats/internal/files"
)

// ClientCounter reports connected websocket clients.
type ClientCounter interface {
	ClientCount() int
}

// CacheReporter exposes observation cache statistics.
type CacheReporter interface {
	CacheStats() dataprocessing.CacheStats
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	dataDir   string
	cache     CacheReporter
	hub       ClientCounter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// SystemStats represents system statistics
type SystemStats struct {
	UptimeSeconds    float64                   `json:"uptime_seconds"`
	Workbooks        int                       `json:"workbooks"`
	TotalSizeBytes   int64                     `json:"total_size_bytes"`
	LatestWorkbook   string                    `json:"latest_workbook,omitempty"`
	LatestModified   *time.Time                `json:"latest_modified,omitempty"`
	WebSocketClients int                       `json:"websocket_clients"`
	Cache            dataprocessing.CacheStats `json:"cache"`
	GoVersion        string                    `json:"go_version"`
	OS               string                    `json:"os"`
	Arch             string                    `json:"arch"`
}

// NewHealthService creates a new health service. cache and hub may be nil.
func NewHealthService(version, buildTime, dataDir string, cache CacheReporter, hub ClientCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("HealthService initialized",
		slog.String("version", version),
		slog.String("data_dir", dataDir))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		dataDir:   dataDir,
		cache:     cache,
		hub:       hub,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports ready when the data directory can be listed.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]ServiceHealth{
			"data":      hs.checkDataHealth(),
			"websocket": hs.checkWebSocketHealth(),
		},
	}
	for name, svc := range status.Services {
		if svc.Status != "ready" {
			status.Status = "not_ready"
			hs.logger.WarnContext(ctx, "service not ready",
				slog.String("service", name),
				slog.String("message", svc.Message))
		}
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":    hs.version,
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"uptime":     time.Since(hs.startTime).Seconds(),
		"start_time": hs.startTime.Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	return result
}

// SystemStats returns system statistics
func (hs *HealthService) SystemStats(ctx context.Context) (SystemStats, error) {
	workbooks, err := files.NewDiscovery(hs.dataDir).FindWorkbooks()
	if err != nil {
		return SystemStats{}, err
	}

	stats := SystemStats{
		UptimeSeconds: time.Since(hs.startTime).Seconds(),
		Workbooks:     len(workbooks),
		GoVersion:     runtime.Version(),
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
	}
	for _, wb := range workbooks {
		stats.TotalSizeBytes += wb.Size
	}
	if latest, ok := files.GetLatestFile(workbooks); ok {
		stats.LatestWorkbook = latest.Name
		stats.LatestModified = &latest.ModTime
	}
	if hs.hub != nil {
		stats.WebSocketClients = hs.hub.ClientCount()
	}
	if hs.cache != nil {
		stats.Cache = hs.cache.CacheStats()
	}
	return stats, nil
}

// GetDetailedHealth returns comprehensive health information
func (hs *HealthService) GetDetailedHealth(ctx context.Context) map[string]interface{} {
	detail := map[string]interface{}{
		"health":    hs.HealthCheck(ctx),
		"readiness": hs.ReadinessCheck(ctx),
		"liveness":  hs.LivenessCheck(ctx),
	}
	if stats, err := hs.SystemStats(ctx); err == nil {
		detail["stats"] = stats
	}
	return detail
}

func (hs *HealthService) checkWebSocketHealth() ServiceHealth {
	if hs.hub == nil {
		return ServiceHealth{Status: "ready", Message: "WebSocket hub disabled"}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d clients connected", hs.hub.ClientCount()),
		Uptime:  time.Since(hs.startTime).String(),
	}
}

func (hs *HealthService) checkDataHealth() ServiceHealth {
	info, err := os.Stat(hs.dataDir)
	if err != nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Data directory not found: %s", hs.dataDir),
		}
	}
	if !info.IsDir() {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Data path is not a directory: %s", hs.dataDir),
		}
	}
	workbooks, err := files.NewDiscovery(hs.dataDir).FindWorkbooks()
	if err != nil {
		return ServiceHealth{Status: "not_ready", Message: err.Error()}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d workbooks available", len(workbooks)),
	}
}
