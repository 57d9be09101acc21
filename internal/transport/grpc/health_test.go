package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/Raisondetr3/store-sales-proxy/internal/config"
	"github.com/Raisondetr3/store-sales-proxy/pkg/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type stubHealth struct {
	status *dto.HealthStatus
	err    error
	panics bool
}

func (s *stubHealth) Health(context.Context) (*dto.HealthStatus, error) {
	if s.panics {
		panic("gate exploded")
	}
	return s.status, s.err
}

func startServer(t *testing.T, svc *stubHealth) healthpb.HealthClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := NewGRPCServer(&config.Config{}, svc)

	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Stop(ctx)
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return healthpb.NewHealthClient(conn)
}

func TestHealthServer_Serving(t *testing.T) {
	client := startServer(t, &stubHealth{status: &dto.HealthStatus{Status: dto.StatusHealthy}})

	for _, name := range []string{"", BackendServiceName} {
		resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: name})
		require.NoError(t, err)
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
	}
}

func TestHealthServer_NotServing(t *testing.T) {
	client := startServer(t, &stubHealth{status: &dto.HealthStatus{Status: dto.StatusUnhealthy, Message: "Backend returned status 502"}})

	resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}

func TestHealthServer_UnknownService(t *testing.T) {
	client := startServer(t, &stubHealth{status: &dto.HealthStatus{Status: dto.StatusHealthy}})

	_, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "payments"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestHealthServer_CancelledCheck(t *testing.T) {
	client := startServer(t, &stubHealth{err: context.Canceled})

	_, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{})
	assert.Equal(t, codes.Canceled, status.Code(err))
}

func TestHealthServer_PanicIsInternal(t *testing.T) {
	client := startServer(t, &stubHealth{panics: true})

	_, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{})
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestHealthServer_RequestIDHeader(t *testing.T) {
	client := startServer(t, &stubHealth{status: &dto.HealthStatus{Status: dto.StatusHealthy}})

	ctx := metadata.AppendToOutgoingContext(context.Background(), "x-request-id", "grpc-req-1")
	var header metadata.MD
	_, err := client.Check(ctx, &healthpb.HealthCheckRequest{}, grpc.Header(&header))
	require.NoError(t, err)
	assert.Equal(t, []string{"grpc-req-1"}, header.Get("x-request-id"))

	header = nil
	_, err = client.Check(context.Background(), &healthpb.HealthCheckRequest{}, grpc.Header(&header))
	require.NoError(t, err)
	require.Len(t, header.Get("x-request-id"), 1)
	assert.NotEmpty(t, header.Get("x-request-id")[0])
}
