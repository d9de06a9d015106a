package config

import (
	"time"

	"github.com/vietddude/rpcpulse/internal/core/domain"
	redisclient "github.com/vietddude/rpcpulse/internal/infra/redis"
	"github.com/vietddude/rpcpulse/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Chains   []ChainConfig      `yaml:"chains"`
	Health   HealthConfig       `yaml:"health"`
	Recovery RecoveryConfig     `yaml:"recovery"`
	Redis    redisclient.Config `yaml:"redis"`
	Logging  LoggingConfig      `yaml:"logging"`
	Database postgres.Config    `yaml:"database"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// ChainConfig holds the endpoint pool for one chain.
type ChainConfig struct {
	ChainID   domain.ChainID   `yaml:"id"`
	Name      string           `yaml:"name"`
	Endpoints []EndpointConfig `yaml:"endpoints"`
}

// EndpointConfig holds settings for a single RPC endpoint.
type EndpointConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// HealthConfig holds cache and probing settings.
type HealthConfig struct {
	CacheTimeout    time.Duration `yaml:"cache_timeout"`    // snapshot staleness window
	RefreshInterval time.Duration `yaml:"refresh_interval"` // background refresh period
	ProbeTimeout    time.Duration `yaml:"probe_timeout"`    // per-endpoint probe deadline
	BlockSampleSize int           `yaml:"block_sample_size"`
}

// RecoveryConfig holds retry and consent settings.
type RecoveryConfig struct {
	MaxAttempts       int           `yaml:"max_attempts"`
	InitialDelay      time.Duration `yaml:"initial_delay"`
	MaxDelay          time.Duration `yaml:"max_delay"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier"`
	ConsentTimeout    time.Duration `yaml:"consent_timeout"`
}
