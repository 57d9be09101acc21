package service

import (
	"context"
	"time"

	"github.com/Raisondetr3/store-sales-proxy/internal/health"
	"github.com/Raisondetr3/store-sales-proxy/pkg/dto"
	"github.com/Raisondetr3/store-sales-proxy/pkg/logger"
)

// HealthChecker is satisfied by *health.Gate.
type HealthChecker interface {
	CheckHealth(ctx context.Context, timeout time.Duration) health.Result
}

type HealthService interface {
	Health(ctx context.Context) (*dto.HealthStatus, error)
}

type healthService struct {
	gate HealthChecker
}

func NewHealthService(gate HealthChecker) HealthService {
	return &healthService{
		gate: gate,
	}
}

// Health never reports a backend problem as an error. An error means the
// check itself could not be carried out.
func (s *healthService) Health(ctx context.Context) (*dto.HealthStatus, error) {
	res := s.gate.CheckHealth(ctx, 0)

	if err := ctx.Err(); err != nil {
		logger.LogError(ctx, err, "backend_health_check")
		return nil, err
	}

	status := &dto.HealthStatus{
		Status:  dto.StatusUnhealthy,
		Message: res.Message,
	}
	if res.Healthy {
		status.Status = dto.StatusHealthy
	}
	if res.Timed() {
		ms := res.ResponseTime.Milliseconds()
		status.ResponseTime = &ms
	}

	return status, nil
}
