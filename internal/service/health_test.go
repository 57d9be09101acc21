package service

import (
	"context"
	"testing"
	"time"

	"github.com/Raisondetr3/store-sales-proxy/internal/health"
	"github.com/Raisondetr3/store-sales-proxy/pkg/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthService_Health(t *testing.T) {
	tests := []struct {
		name       string
		result     health.Result
		wantStatus string
		wantTime   *int64
	}{
		{
			name:       "probed healthy",
			result:     health.Result{Healthy: true, Message: health.MsgHealthy, ResponseTime: 120 * time.Millisecond, Reason: health.ReasonOK},
			wantStatus: dto.StatusHealthy,
			wantTime:   int64Ptr(120),
		},
		{
			name:       "cached",
			result:     health.Result{Healthy: true, Message: health.MsgHealthyCached, Reason: health.ReasonCached},
			wantStatus: dto.StatusHealthy,
			wantTime:   int64Ptr(0),
		},
		{
			name:       "timeout",
			result:     health.Result{Healthy: false, Message: health.MsgTimeout, ResponseTime: 60 * time.Second, Reason: health.ReasonTimeout},
			wantStatus: dto.StatusUnhealthy,
			wantTime:   int64Ptr(60000),
		},
		{
			name:       "misconfigured has no timing",
			result:     health.Result{Healthy: false, Message: health.MsgNotConfigured, Reason: health.ReasonMisconfigured},
			wantStatus: dto.StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewHealthService(&fakeGate{result: tt.result})

			status, err := svc.Health(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, status.Status)
			assert.Equal(t, tt.result.Message, status.Message)
			assert.Equal(t, tt.wantTime, status.ResponseTime)
		})
	}
}

func TestHealthService_CancelledRequest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewHealthService(&fakeGate{result: health.Result{Healthy: false, Reason: health.ReasonNetwork}})

	status, err := svc.Health(ctx)
	assert.Nil(t, status)
	assert.ErrorIs(t, err, context.Canceled)
}

func int64Ptr(v int64) *int64 { return &v }
