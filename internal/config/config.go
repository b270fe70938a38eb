package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "parkmap/libs/config"
)

// Config defines parkmap service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"PARKMAP_HTTP_PORT"`
	} `yaml:"http"`
	Upstream struct {
		URL            string `yaml:"url" env:"PARKMAP_UPSTREAM_URL"`
		TimeoutSeconds int    `yaml:"timeoutSeconds" env:"PARKMAP_UPSTREAM_TIMEOUT"`
	} `yaml:"upstream"`
	Refresh struct {
		Schedule string `yaml:"schedule" env:"PARKMAP_REFRESH_SCHEDULE"`
	} `yaml:"refresh"`
	Redis struct {
		Addr       string `yaml:"addr" env:"PARKMAP_REDIS_ADDR"`
		Password   string `yaml:"password" env:"PARKMAP_REDIS_PASSWORD"`
		DB         int    `yaml:"db" env:"PARKMAP_REDIS_DB"`
		TTLSeconds int    `yaml:"ttlSeconds" env:"PARKMAP_REDIS_TTL"`
	} `yaml:"redis"`
	Auth struct {
		Secret string `yaml:"secret" env:"PARKMAP_AUTH_SECRET"`
	} `yaml:"auth"`
	Map struct {
		CenterLat float64 `yaml:"centerLat" env:"PARKMAP_MAP_CENTER_LAT"`
		CenterLng float64 `yaml:"centerLng" env:"PARKMAP_MAP_CENTER_LNG"`
		SpanLat   float64 `yaml:"spanLat" env:"PARKMAP_MAP_SPAN_LAT"`
		SpanLng   float64 `yaml:"spanLng" env:"PARKMAP_MAP_SPAN_LNG"`
	} `yaml:"map"`
}

// Load reads configuration via shared helper.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := libconfig.Load(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Upstream.URL) == "" {
		return nil, errors.New("config: upstream url required")
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// UpstreamTimeout returns the fetch timeout.
func (c *Config) UpstreamTimeout() time.Duration {
	if c.Upstream.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Upstream.TimeoutSeconds) * time.Second
}

// RefreshSchedule returns the cron spec for periodic refreshes.
func (c *Config) RefreshSchedule() string {
	schedule := strings.TrimSpace(c.Refresh.Schedule)
	if schedule == "" {
		return "@every 1m"
	}
	return schedule
}

// SnapshotTTL returns how long the persisted snapshot stays valid.
func (c *Config) SnapshotTTL() time.Duration {
	if c.Redis.TTLSeconds <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Redis.TTLSeconds) * time.Second
}
