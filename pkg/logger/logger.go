package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	Level    string
	Output   string
	FilePath string
	FileName string
}

type ctxKey struct{}

// SetupLogger installs a JSON slog handler as the process default.
func SetupLogger(cfg Config, serviceName string) error {
	var out io.Writer = os.Stdout

	if cfg.Output == "file" {
		if err := os.MkdirAll(cfg.FilePath, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		if cfg.FileName == "" {
			cfg.FileName = fmt.Sprintf("%s.log", serviceName)
		}

		fullPath := filepath.Join(cfg.FilePath, cfg.FileName)

		logFile, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		out = logFile
	}

	slog.SetDefault(New(out, cfg.Level, serviceName))

	return nil
}

// New builds the service logger on top of an arbitrary writer.
func New(out io.Writer, level, serviceName string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(level),
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	return slog.New(slog.NewJSONHandler(out, opts)).With(
		slog.String("service", serviceName),
	)
}

func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if requestID, ok := ctx.Value(ctxKey{}).(string); ok {
		return requestID
	}
	return ""
}

func withRequestID(ctx context.Context, attrs []slog.Attr) []slog.Attr {
	if requestID := RequestIDFromContext(ctx); requestID != "" {
		attrs = append(attrs, slog.String("request_id", requestID))
	}
	return attrs
}

func LogHTTPRequest(ctx context.Context, method, path, userAgent, requestID string, duration time.Duration, statusCode int) {
	if ctx == nil {
		ctx = context.Background()
	}

	attrs := []slog.Attr{
		slog.String("type", "http_request"),
		slog.String("method", method),
		slog.String("path", path),
		slog.String("user_agent", userAgent),
		slog.String("request_id", requestID),
		slog.Duration("duration", duration),
		slog.Int("status_code", statusCode),
	}

	if statusCode >= 500 {
		slog.LogAttrs(ctx, slog.LevelError, "HTTP Request", attrs...)
	} else if statusCode >= 400 {
		slog.LogAttrs(ctx, slog.LevelWarn, "HTTP Request", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelInfo, "HTTP Request", attrs...)
	}
}

func LogGRPCRequest(ctx context.Context, method string, duration time.Duration, err error) {
	attrs := withRequestID(ctx, []slog.Attr{
		slog.String("type", "grpc_request"),
		slog.String("method", method),
		slog.Duration("duration", duration),
	})

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		slog.LogAttrs(ctx, slog.LevelError, "gRPC Request Failed", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelInfo, "gRPC Request", attrs...)
	}
}

// LogHealthCheck records the outcome of a backend probe. Cached answers are
// logged at debug level since they happen on every proxied request.
func LogHealthCheck(ctx context.Context, backendURL string, healthy bool, reason, message string, duration time.Duration) {
	if ctx == nil {
		ctx = context.Background()
	}

	attrs := withRequestID(ctx, []slog.Attr{
		slog.String("type", "health_check"),
		slog.String("backend", MaskURL(backendURL)),
		slog.Bool("healthy", healthy),
		slog.String("reason", reason),
		slog.String("message", message),
		slog.Duration("duration", duration),
	})

	switch {
	case reason == "cached":
		slog.LogAttrs(ctx, slog.LevelDebug, "Backend Health Check", attrs...)
	case healthy:
		slog.LogAttrs(ctx, slog.LevelInfo, "Backend Health Check", attrs...)
	default:
		slog.LogAttrs(ctx, slog.LevelWarn, "Backend Health Check Failed", attrs...)
	}
}

func LogUpstreamCall(ctx context.Context, method, target string, statusCode int, duration time.Duration, err error) {
	attrs := withRequestID(ctx, []slog.Attr{
		slog.String("type", "upstream_call"),
		slog.String("method", method),
		slog.String("url", MaskURL(target)),
		slog.Int("status_code", statusCode),
		slog.Duration("duration", duration),
	})

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		slog.LogAttrs(ctx, slog.LevelError, "Upstream Call Failed", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelDebug, "Upstream Call", attrs...)
	}
}

func LogRedisCacheHit(ctx context.Context, key string, hit bool, duration time.Duration) {
	attrs := []slog.Attr{
		slog.String("type", "cache_event"),
		slog.String("key", key),
		slog.Bool("cache_hit", hit),
		slog.Duration("duration", duration),
	}

	if hit {
		slog.LogAttrs(ctx, slog.LevelDebug, "Cache Hit", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelDebug, "Cache Miss", attrs...)
	}
}

func LogError(ctx context.Context, err error, operation string, additionalFields ...slog.Attr) {
	attrs := withRequestID(ctx, []slog.Attr{
		slog.String("type", "error"),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	})
	attrs = append(attrs, additionalFields...)

	slog.LogAttrs(ctx, slog.LevelError, "Operation Error", attrs...)
}

func LogSaleItemOperation(ctx context.Context, operation, itemID string, duration time.Duration, err error) {
	attrs := withRequestID(ctx, []slog.Attr{
		slog.String("type", "sale_item_operation"),
		slog.String("operation", operation),
		slog.String("item_id", itemID),
		slog.Duration("duration", duration),
	})

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		slog.LogAttrs(ctx, slog.LevelWarn, "Sale Item Operation Failed", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelInfo, "Sale Item Operation", attrs...)
	}
}

// MaskURL hides the password part of a URL's userinfo.
func MaskURL(raw string) string {
	if raw == "" {
		return raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}

	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "***")
	}

	return u.String()
}

func LogSlowOperation(ctx context.Context, operation string, duration time.Duration, threshold time.Duration) {
	if duration <= threshold {
		return
	}

	attrs := []slog.Attr{
		slog.String("type", "slow_operation"),
		slog.String("operation", operation),
		slog.Duration("duration", duration),
		slog.Duration("threshold", threshold),
	}

	slog.LogAttrs(ctx, slog.LevelWarn, "Slow Operation Detected", attrs...)
}

func LogServiceStart(serviceName string, config map[string]interface{}) {
	attrs := []slog.Attr{
		slog.String("type", "service_lifecycle"),
		slog.String("event", "start"),
		slog.String("service", serviceName),
		slog.Any("config", config),
	}

	slog.LogAttrs(context.Background(), slog.LevelInfo, "Service Starting", attrs...)
}

func LogServiceStop(serviceName string, reason string) {
	attrs := []slog.Attr{
		slog.String("type", "service_lifecycle"),
		slog.String("event", "stop"),
		slog.String("service", serviceName),
		slog.String("reason", reason),
	}

	slog.LogAttrs(context.Background(), slog.LevelInfo, "Service Stopping", attrs...)
}

func LogRedisShardConnection(ctx context.Context, shardIndex int, addr string, err error) {
	attrs := []slog.Attr{
		slog.String("type", "redis_shard_connection"),
		slog.Int("shard_index", shardIndex),
		slog.String("address", addr),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		slog.LogAttrs(ctx, slog.LevelError, "Redis Shard Connection Failed", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelInfo, "Redis Shard Connected", attrs...)
	}
}

func LogCacheOperation(ctx context.Context, operation, key string, shardIndex int, duration time.Duration, err error) {
	attrs := []slog.Attr{
		slog.String("type", "cache_operation"),
		slog.String("operation", operation),
		slog.String("key", key),
		slog.Int("shard_index", shardIndex),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		slog.LogAttrs(ctx, slog.LevelError, "Cache Operation Failed", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelDebug, "Cache Operation Success", attrs...)
	}
}

func LogCacheStatus(ctx context.Context, enabled bool, shardCount int, ttl time.Duration) {
	attrs := []slog.Attr{
		slog.String("type", "cache_status"),
		slog.Bool("enabled", enabled),
		slog.Int("shard_count", shardCount),
		slog.Duration("default_ttl", ttl),
	}

	if enabled {
		slog.LogAttrs(ctx, slog.LevelInfo, "Cache Initialized", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelInfo, "Cache Disabled", attrs...)
	}
}
