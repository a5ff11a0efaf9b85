// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

// Package config loads the layered Ludographus configuration: struct
// defaults, then an optional YAML file, then LUDO_-prefixed environment
// variables, each layer overriding the previous one.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/ludograph/ludographus/internal/recommend"
)

// DefaultConfigPaths lists where config files are searched, first hit wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/ludographus/config.yaml",
	"/etc/ludographus/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "LUDO_CONFIG_PATH"

// envPrefix namespaces all configuration environment variables.
const envPrefix = "LUDO_"

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig      `koanf:"server"`
	Database  DatabaseConfig    `koanf:"database"`
	Engine    EngineConfig      `koanf:"engine"`
	Embedding EmbeddingConfig   `koanf:"embedding"`
	Logging   LoggingConfig     `koanf:"logging"`
	WebSocket WebSocketConfig   `koanf:"websocket"`
	Recommend *recommend.Config `koanf:"recommend"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	// RequestTimeout bounds how long a recommendation request waits for
	// its terminal result.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// RateLimitReqs per RateLimitWindow per client IP.
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// DatabaseConfig configures the DuckDB store.
type DatabaseConfig struct {
	Path string `koanf:"path"`

	// CandidateLimit caps the candidate pool loaded per run.
	CandidateLimit int `koanf:"candidate_limit"`

	// SeedMockData loads a small demo library at startup.
	SeedMockData bool `koanf:"seed_mock_data"`
}

// EngineConfig configures the recommendation worker.
type EngineConfig struct {
	// QueueSize is the buffered job queue length.
	QueueSize int `koanf:"queue_size"`
}

// EmbeddingConfig configures the optional dense-vector provider.
type EmbeddingConfig struct {
	// URL of the embedding provider; empty disables the client.
	URL string `koanf:"url"`

	Timeout time.Duration `koanf:"timeout"`

	// RequestsPerSecond and Burst bound the request rate.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// WebSocketConfig configures the event hub.
type WebSocketConfig struct {
	// SendBuffer is the per-client outbound queue length; slow clients
	// overflowing it are disconnected.
	SendBuffer int `koanf:"send_buffer"`
}

// defaultConfig returns the full default configuration.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8585,
			Timeout:         30 * time.Second,
			RequestTimeout:  30 * time.Second,
			RateLimitReqs:   60,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Database: DatabaseConfig{
			Path:           "/data/ludographus.duckdb",
			CandidateLimit: 5000,
			SeedMockData:   false,
		},
		Engine: EngineConfig{
			QueueSize: 64,
		},
		Embedding: EmbeddingConfig{
			URL:               "",
			Timeout:           5 * time.Second,
			RequestsPerSecond: 4,
			Burst:             8,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		WebSocket: WebSocketConfig{
			SendBuffer: 32,
		},
		Recommend: recommend.DefaultConfig(),
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// the environment. Returns a validated configuration or an error.
func Load() (*Config, error) {
	return LoadFrom(findConfigFile())
}

// LoadFrom loads configuration with an explicit file path. An empty path
// skips the file layer.
func LoadFrom(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	// LUDO_SERVER_PORT=8080 -> server.port
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile resolves the config file path: env override first, then
// the default search list. Empty when nothing exists.
func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		return path
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be positive, got %s", c.Server.RequestTimeout)
	}
	if c.Server.RateLimitReqs < 1 {
		return fmt.Errorf("server.rate_limit_reqs must be positive, got %d", c.Server.RateLimitReqs)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Database.CandidateLimit < 1 {
		return fmt.Errorf("database.candidate_limit must be positive, got %d", c.Database.CandidateLimit)
	}
	if c.Engine.QueueSize < 1 {
		return fmt.Errorf("engine.queue_size must be positive, got %d", c.Engine.QueueSize)
	}
	if c.Embedding.RequestsPerSecond <= 0 {
		return fmt.Errorf("embedding.requests_per_second must be positive, got %f", c.Embedding.RequestsPerSecond)
	}
	if c.Embedding.Burst < 1 {
		return fmt.Errorf("embedding.burst must be positive, got %d", c.Embedding.Burst)
	}
	if c.WebSocket.SendBuffer < 1 {
		return fmt.Errorf("websocket.send_buffer must be positive, got %d", c.WebSocket.SendBuffer)
	}
	if c.Recommend == nil {
		return fmt.Errorf("recommend config is required")
	}
	if err := c.Recommend.Validate(); err != nil {
		return fmt.Errorf("recommend config: %w", err)
	}
	return nil
}
