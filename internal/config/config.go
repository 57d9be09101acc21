package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig
	Logging LoggingConfig
	Backend BackendConfig
	Redis   RedisConfig
}

type ServerConfig struct {
	HTTPPort     string
	GRPCPort     string
	GRPCEnabled  bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type LoggingConfig struct {
	Level    string
	Output   string
	FilePath string
	FileName string
}

// BackendConfig describes the remote store API. An empty URL is allowed at
// startup; every proxy request then fails with a configuration error.
type BackendConfig struct {
	URL                string
	HealthCacheTTL     time.Duration
	HealthCheckTimeout time.Duration
	UpstreamTimeout    time.Duration
}

type RedisConfig struct {
	Enabled  bool
	URLs     []string
	Password string
	DB       int
	TTL      time.Duration
	ListTTL  time.Duration
}

// writeTimeoutMargin is added on top of the longest gated request (health
// probe plus upstream call) when no write timeout is configured.
const writeTimeoutMargin = 10 * time.Second

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:     "8080",
			GRPCPort:     "9090",
			GRPCEnabled:  true,
			ReadTimeout:  30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "stdout",
			FilePath: "logs",
			FileName: "store-proxy.log",
		},
		Backend: BackendConfig{
			HealthCacheTTL:     30 * time.Second,
			HealthCheckTimeout: 60 * time.Second,
			UpstreamTimeout:    30 * time.Second,
		},
		Redis: RedisConfig{
			URLs:    []string{},
			TTL:     300 * time.Second,
			ListTTL: 60 * time.Second,
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file named by
// CONFIG_FILE and finally the environment. Environment values win.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = cfg.MinWriteTimeout() + writeTimeoutMargin
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var raw fileConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	return raw.applyTo(c)
}

func (c *Config) applyEnv() {
	c.Server.HTTPPort = getEnv("HTTP_PORT", c.Server.HTTPPort)
	c.Server.GRPCPort = getEnv("GRPC_PORT", c.Server.GRPCPort)
	c.Server.GRPCEnabled = getEnvBool("GRPC_ENABLED", c.Server.GRPCEnabled)
	c.Server.WriteTimeout = getEnvDuration("HTTP_WRITE_TIMEOUT", c.Server.WriteTimeout)

	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Logging.Output = getEnv("LOG_OUTPUT", c.Logging.Output)
	c.Logging.FilePath = getEnv("LOG_FILE_PATH", c.Logging.FilePath)
	c.Logging.FileName = getEnv("LOG_FILE_NAME", c.Logging.FileName)

	c.Backend.URL = strings.TrimRight(getEnv("STORE_API_URL", c.Backend.URL), "/")
	c.Backend.HealthCacheTTL = getEnvDuration("HEALTH_CACHE_TTL", c.Backend.HealthCacheTTL)
	c.Backend.HealthCheckTimeout = getEnvDuration("HEALTH_CHECK_TIMEOUT", c.Backend.HealthCheckTimeout)
	c.Backend.UpstreamTimeout = getEnvDuration("UPSTREAM_TIMEOUT", c.Backend.UpstreamTimeout)

	c.Redis.Enabled = getEnvBool("REDIS_ENABLED", c.Redis.Enabled)
	if urls := os.Getenv("REDIS_URLS"); urls != "" {
		c.Redis.URLs = parseRedisURLs(urls)
	}
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvInt("REDIS_DB", c.Redis.DB)
	c.Redis.TTL = getEnvDuration("REDIS_TTL", c.Redis.TTL)
	c.Redis.ListTTL = getEnvDuration("REDIS_LIST_TTL", c.Redis.ListTTL)
}

// Validate rejects values the service cannot run with. A missing backend URL
// is not one of them.
func (c *Config) Validate() error {
	if c.Backend.URL != "" {
		u, err := url.Parse(c.Backend.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid STORE_API_URL %q", c.Backend.URL)
		}
	}
	if c.Backend.HealthCacheTTL < 0 {
		return fmt.Errorf("health cache ttl must not be negative")
	}
	if c.Backend.HealthCheckTimeout <= 0 {
		return fmt.Errorf("health check timeout must be positive")
	}
	if c.Backend.UpstreamTimeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive")
	}
	if c.Server.WriteTimeout != 0 && c.Server.WriteTimeout <= c.MinWriteTimeout() {
		return fmt.Errorf("write timeout %s must exceed health check timeout plus upstream timeout (%s)",
			c.Server.WriteTimeout, c.MinWriteTimeout())
	}
	if c.Redis.Enabled && len(c.Redis.URLs) == 0 {
		return fmt.Errorf("REDIS_URLS cannot be empty when Redis is enabled")
	}
	switch c.Logging.Output {
	case "stdout", "file":
	default:
		return fmt.Errorf("unknown log output %q", c.Logging.Output)
	}
	return nil
}

// MinWriteTimeout is the longest a gated request can take before its response
// is written: a full health probe followed by a full upstream call.
func (c *Config) MinWriteTimeout() time.Duration {
	return c.Backend.HealthCheckTimeout + c.Backend.UpstreamTimeout
}

// BackendConfigured reports whether a remote store API URL is set.
func (c *Config) BackendConfigured() bool {
	return c.Backend.URL != ""
}

func parseRedisURLs(urls string) []string {
	if urls == "" {
		return []string{}
	}

	urlList := strings.Split(urls, ",")
	result := make([]string, 0, len(urlList))

	for _, addr := range urlList {
		trimmed := strings.TrimSpace(addr)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration accepts "45s"-style durations or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := parseDuration(value); err == nil {
		return d
	}
	return defaultValue
}

func parseDuration(value string) (time.Duration, error) {
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	return time.ParseDuration(value)
}
