package middleware

import (
	"context"
	"testing"

	"github.com/Raisondetr3/store-sales-proxy/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var testInfo = &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

func TestChainUnaryInterceptors_Order(t *testing.T) {
	var order []string
	mark := func(name string) grpc.UnaryServerInterceptor {
		return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
			order = append(order, name)
			return handler(ctx, req)
		}
	}

	chain := ChainUnaryInterceptors(mark("first"), mark("second"), mark("third"))
	resp, err := chain(context.Background(), "req", testInfo, func(ctx context.Context, req interface{}) (interface{}, error) {
		order = append(order, "handler")
		return "resp", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "resp", resp)
	assert.Equal(t, []string{"first", "second", "third", "handler"}, order)
}

func TestRequestIDUnaryInterceptor(t *testing.T) {
	var seen string
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		seen = logger.RequestIDFromContext(ctx)
		return nil, nil
	}

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDHeader, "from-client"))
	_, err := RequestIDUnaryInterceptor(ctx, nil, testInfo, handler)
	require.NoError(t, err)
	assert.Equal(t, "from-client", seen)

	_, err = RequestIDUnaryInterceptor(context.Background(), nil, testInfo, handler)
	require.NoError(t, err)
	assert.Len(t, seen, 36)
}

func TestPanicRecoveryUnaryInterceptor(t *testing.T) {
	_, err := PanicRecoveryUnaryInterceptor(context.Background(), nil, testInfo, func(context.Context, interface{}) (interface{}, error) {
		panic("boom")
	})
	assert.Equal(t, codes.Internal, status.Code(err))
}
