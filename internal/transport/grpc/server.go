package grpc

import (
	"context"
	"log/slog"
	"net"

	"github.com/Raisondetr3/store-sales-proxy/internal/config"
	"github.com/Raisondetr3/store-sales-proxy/internal/service"
	"github.com/Raisondetr3/store-sales-proxy/internal/transport/grpc/middleware"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

type GRPCServer struct {
	server *grpc.Server
	config *config.Config
}

func NewGRPCServer(cfg *config.Config, healthService service.HealthService) *GRPCServer {
	server := grpc.NewServer(
		grpc.UnaryInterceptor(
			middleware.ChainUnaryInterceptors(
				middleware.RequestIDUnaryInterceptor,
				middleware.LoggingUnaryInterceptor,
				middleware.PanicRecoveryUnaryInterceptor,
			),
		),
	)

	healthpb.RegisterHealthServer(server, NewHealthServer(healthService))
	reflection.Register(server)

	return &GRPCServer{
		server: server,
		config: cfg,
	}
}

func (s *GRPCServer) StartServer() error {
	address := ":" + s.config.Server.GRPCPort

	listener, err := net.Listen("tcp", address)
	if err != nil {
		slog.Error("Failed to listen on gRPC port",
			slog.String("address", address),
			slog.String("error", err.Error()))
		return err
	}

	slog.Info("gRPC server starting", slog.String("address", address))

	return s.Serve(listener)
}

// Serve blocks on an already open listener.
func (s *GRPCServer) Serve(listener net.Listener) error {
	if err := s.server.Serve(listener); err != nil {
		slog.Error("gRPC server error", slog.String("error", err.Error()))
		return err
	}

	return nil
}

func (s *GRPCServer) Stop(ctx context.Context) error {
	slog.Info("Stopping gRPC server")

	done := make(chan struct{})

	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("gRPC server stopped gracefully")
		return nil
	case <-ctx.Done():
		slog.Warn("gRPC server shutdown timeout, forcing stop")
		s.server.Stop()
		return ctx.Err()
	}
}
