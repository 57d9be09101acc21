package grpc

import (
	"context"

	"github.com/Raisondetr3/store-sales-proxy/internal/service"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// BackendServiceName is the gRPC health service name that tracks the remote
// store backend. The empty name reports the same thing.
const BackendServiceName = "store.backend"

type HealthServer struct {
	healthpb.UnimplementedHealthServer
	healthService service.HealthService
}

func NewHealthServer(healthService service.HealthService) *HealthServer {
	return &HealthServer{
		healthService: healthService,
	}
}

func (s *HealthServer) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if name := req.GetService(); name != "" && name != BackendServiceName {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", name)
	}

	health, err := s.healthService.Health(ctx)
	if err != nil {
		return nil, status.FromContextError(err).Err()
	}

	resp := &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}
	if health.Healthy() {
		resp.Status = healthpb.HealthCheckResponse_SERVING
	}
	return resp, nil
}
