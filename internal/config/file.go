package config

import (
	"fmt"
	"time"
)

// fileConfig mirrors Config for YAML input. Pointers distinguish "absent" from
// zero values, and durations are strings so "30s" and "30" both work.
type fileConfig struct {
	Server struct {
		HTTPPort     *string `yaml:"http_port"`
		GRPCPort     *string `yaml:"grpc_port"`
		GRPCEnabled  *bool   `yaml:"grpc_enabled"`
		ReadTimeout  *string `yaml:"read_timeout"`
		WriteTimeout *string `yaml:"write_timeout"`
		IdleTimeout  *string `yaml:"idle_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level    *string `yaml:"level"`
		Output   *string `yaml:"output"`
		FilePath *string `yaml:"file_path"`
		FileName *string `yaml:"file_name"`
	} `yaml:"logging"`
	Backend struct {
		URL                *string `yaml:"url"`
		HealthCacheTTL     *string `yaml:"health_cache_ttl"`
		HealthCheckTimeout *string `yaml:"health_check_timeout"`
		UpstreamTimeout    *string `yaml:"upstream_timeout"`
	} `yaml:"backend"`
	Redis struct {
		Enabled  *bool    `yaml:"enabled"`
		URLs     []string `yaml:"urls"`
		Password *string  `yaml:"password"`
		DB       *int     `yaml:"db"`
		TTL      *string  `yaml:"ttl"`
		ListTTL  *string  `yaml:"list_ttl"`
	} `yaml:"redis"`
}

func (f *fileConfig) applyTo(c *Config) error {
	setString(&c.Server.HTTPPort, f.Server.HTTPPort)
	setString(&c.Server.GRPCPort, f.Server.GRPCPort)
	if f.Server.GRPCEnabled != nil {
		c.Server.GRPCEnabled = *f.Server.GRPCEnabled
	}

	setString(&c.Logging.Level, f.Logging.Level)
	setString(&c.Logging.Output, f.Logging.Output)
	setString(&c.Logging.FilePath, f.Logging.FilePath)
	setString(&c.Logging.FileName, f.Logging.FileName)

	setString(&c.Backend.URL, f.Backend.URL)

	if f.Redis.Enabled != nil {
		c.Redis.Enabled = *f.Redis.Enabled
	}
	if len(f.Redis.URLs) > 0 {
		c.Redis.URLs = f.Redis.URLs
	}
	setString(&c.Redis.Password, f.Redis.Password)
	if f.Redis.DB != nil {
		c.Redis.DB = *f.Redis.DB
	}

	durations := []struct {
		name string
		src  *string
		dst  *time.Duration
	}{
		{"server.read_timeout", f.Server.ReadTimeout, &c.Server.ReadTimeout},
		{"server.write_timeout", f.Server.WriteTimeout, &c.Server.WriteTimeout},
		{"server.idle_timeout", f.Server.IdleTimeout, &c.Server.IdleTimeout},
		{"backend.health_cache_ttl", f.Backend.HealthCacheTTL, &c.Backend.HealthCacheTTL},
		{"backend.health_check_timeout", f.Backend.HealthCheckTimeout, &c.Backend.HealthCheckTimeout},
		{"backend.upstream_timeout", f.Backend.UpstreamTimeout, &c.Backend.UpstreamTimeout},
		{"redis.ttl", f.Redis.TTL, &c.Redis.TTL},
		{"redis.list_ttl", f.Redis.ListTTL, &c.Redis.ListTTL},
	}

	for _, d := range durations {
		if d.src == nil {
			continue
		}
		v, err := parseDuration(*d.src)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		*d.dst = v
	}

	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
