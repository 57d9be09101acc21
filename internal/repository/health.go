package repository

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Raisondetr3/store-sales-proxy/pkg/logger"
)

// HealthRepository issues the raw probe against the backend's /health
// endpoint. Deadlines come from the caller's context.
type HealthRepository interface {
	Probe(ctx context.Context) (statusCode int, err error)
	BaseURL() string
}

type healthRepository struct {
	baseURL string
	client  *http.Client
}

func NewHealthRepository(baseURL string, client *http.Client) HealthRepository {
	if client == nil {
		client = http.DefaultClient
	}
	return &healthRepository{
		baseURL: baseURL,
		client:  client,
	}
}

func (r *healthRepository) BaseURL() string {
	return r.baseURL
}

func (r *healthRepository) Probe(ctx context.Context) (int, error) {
	start := time.Now()
	target := r.baseURL + "/health"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		r.logProbeError(ctx, target, duration, err)
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	logger.LogSlowOperation(ctx, "health_probe", duration, 5*time.Second)

	slog.DebugContext(ctx, "Health probe completed",
		slog.Int("status_code", resp.StatusCode),
		slog.Duration("duration", duration),
	)

	return resp.StatusCode, nil
}

func (r *healthRepository) logProbeError(ctx context.Context, target string, duration time.Duration, err error) {
	slog.DebugContext(ctx, "Health probe failed",
		slog.String("url", logger.MaskURL(target)),
		slog.String("error", err.Error()),
		slog.Duration("duration", duration),
		slog.String("type", "health_probe_failure"),
	)
}
