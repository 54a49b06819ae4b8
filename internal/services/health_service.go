package services

import (
	"context"
	"log/slog"
	"time"

	"licensed/internal/license"
	"licensed/pkg/contracts"
	"licensed/pkg/contracts/domain"
)

// HealthService provides health, readiness and version information.
type HealthService struct {
	store   license.Store
	logger  *slog.Logger
	started time.Time
}

// NewHealthService creates a health service probing the given store.
func NewHealthService(store license.Store, logger *slog.Logger) *HealthService {
	return &HealthService{
		store:   store,
		logger:  logger.With(slog.String("service", "health")),
		started: time.Now(),
	}
}

// HealthCheck returns the service banner.
func (s *HealthService) HealthCheck(ctx context.Context) domain.HealthResponse {
	return domain.HealthResponse{
		Message:   contracts.GetVersionString(),
		Status:    "online",
		Version:   contracts.Version,
		Timestamp: time.Now(),
	}
}

// ReadinessResponse reports whether the service can serve traffic.
type ReadinessResponse struct {
	Status    string    `json:"status"`
	Records   int       `json:"records"`
	Uptime    string    `json:"uptime"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadinessCheck probes the store with a load. The store contract treats a
// missing or corrupt file as empty, so readiness only degrades on an
// unexpected store fault.
func (s *HealthService) ReadinessCheck(ctx context.Context) ReadinessResponse {
	status := "ready"
	records := 0
	snapshot, err := s.store.Load(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "readiness probe failed",
			slog.String("error", err.Error()))
		status = "degraded"
	} else {
		records = len(snapshot)
	}
	return ReadinessResponse{
		Status:    status,
		Records:   records,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Timestamp: time.Now(),
	}
}

// LivenessResponse reports that the process is alive.
type LivenessResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// LivenessCheck always succeeds while the process is running.
func (s *HealthService) LivenessCheck(ctx context.Context) LivenessResponse {
	return LivenessResponse{
		Status:    "alive",
		Timestamp: time.Now(),
	}
}

// Version returns build and version metadata.
func (s *HealthService) Version() contracts.VersionInfo {
	return contracts.GetVersionInfo()
}
