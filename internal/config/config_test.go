// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom("")
	if err != nil {
		t.Fatalf("LoadFrom(\"\") error: %v", err)
	}

	if cfg.Server.Port != 8585 {
		t.Errorf("default port = %d, want 8585", cfg.Server.Port)
	}
	if cfg.Server.RateLimitReqs != 60 {
		t.Errorf("default rate limit = %d, want 60", cfg.Server.RateLimitReqs)
	}
	if cfg.Recommend == nil || cfg.Recommend.MMRLambda != 0.7 {
		t.Error("engine defaults not populated")
	}
	if cfg.Embedding.URL != "" {
		t.Errorf("embedding disabled by default, got URL %q", cfg.Embedding.URL)
	}
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: 9911\n  timeout: 10s\nlogging:\n  level: debug\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom error: %v", err)
	}

	if cfg.Server.Port != 9911 {
		t.Errorf("port = %d, want 9911 from file", cfg.Server.Port)
	}
	if cfg.Server.Timeout != 10*time.Second {
		t.Errorf("timeout = %s, want 10s from file", cfg.Server.Timeout)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug from file", cfg.Logging.Level)
	}
	// Untouched keys keep defaults.
	if cfg.Database.CandidateLimit != 5000 {
		t.Errorf("candidate limit = %d, want default 5000", cfg.Database.CandidateLimit)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9911\n"), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	t.Setenv("LUDO_SERVER_PORT", "7001")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom error: %v", err)
	}
	if cfg.Server.Port != 7001 {
		t.Errorf("port = %d, want env override 7001", cfg.Server.Port)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := LoadFrom("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }},
		{"zero timeout", func(c *Config) { c.Server.Timeout = 0 }},
		{"empty db path", func(c *Config) { c.Database.Path = "" }},
		{"zero candidate limit", func(c *Config) { c.Database.CandidateLimit = 0 }},
		{"zero queue size", func(c *Config) { c.Engine.QueueSize = 0 }},
		{"zero embedding rate", func(c *Config) { c.Embedding.RequestsPerSecond = 0 }},
		{"zero send buffer", func(c *Config) { c.WebSocket.SendBuffer = 0 }},
		{"nil engine config", func(c *Config) { c.Recommend = nil }},
		{"invalid engine config", func(c *Config) { c.Recommend.MMRLambda = 5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}
