package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"svpulse/internal/config"
	"svpulse/internal/exporter"
	"svpulse/internal/infrastructure"
	"svpulse/pkg/contracts"
)

// HealthService reports process liveness and data readiness.
type HealthService struct {
	version   string
	paths     *config.Paths
	dashboard *DashboardService
	caps      exporter.Capabilities
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus is the health check response body.
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Build     *contracts.VersionInfo `json:"build,omitempty"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Data      *DataHealth            `json:"data,omitempty"`
	Exports   []string               `json:"exports,omitempty"`
}

// DataHealth summarizes the loaded dataset.
type DataHealth struct {
	Years    []int    `json:"years"`
	Rows     int      `json:"rows"`
	Warnings []string `json:"warnings,omitempty"`
}

// NewHealthService creates a new health service.
func NewHealthService(version string, paths *config.Paths, dashboard *DashboardService, caps exporter.Capabilities, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &HealthService{
		version:   version,
		paths:     paths,
		dashboard: dashboard,
		caps:      caps,
		startTime: time.Now(),
		logger:    logger,
	}
}

// Check builds the full health report. A failed data load degrades the
// status rather than failing the endpoint.
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	build := contracts.GetVersionInfo()
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   s.version,
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Build:     &build,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
		},
		Exports: s.caps.Formats(),
	}

	years, err := s.dashboard.Years(ctx)
	if err != nil {
		s.logger.Warn("health check: dataset unavailable", "error", err)
		status.Status = "degraded"
		status.Data = &DataHealth{Warnings: []string{fmt.Sprintf("dataset unavailable: %v", err)}}
		return status
	}

	stats, _ := s.dashboard.LoadStats(ctx)
	rows := 0
	for _, st := range stats {
		rows += st.Rows
	}
	warnings, _ := s.dashboard.Warnings(ctx)
	status.Data = &DataHealth{Years: years, Rows: rows, Warnings: warnings}
	if len(warnings) > 0 {
		status.Status = "degraded"
	}
	return status
}

// Liveness is the minimal check used by probes.
func (s *HealthService) Liveness() HealthStatus {
	return HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   s.version,
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
	}
}
