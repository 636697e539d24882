// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting
//
// Config is immutable after Load() and safe for concurrent read access
// from multiple goroutines.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Clustering ClusteringConfig `koanf:"clustering"`
	Rooms      RoomsConfig      `koanf:"rooms"`
	Synthesis  SynthesisConfig  `koanf:"synthesis"`
	Archive    ArchiveConfig    `koanf:"archive"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_HOST: Bind address (default: 0.0.0.0)
//   - HTTP_PORT: Listen port (default: 8080)
//   - HTTP_TIMEOUT: Read/write timeout (default: 30s)
//   - CORS_ORIGINS: Comma-separated allowed origins (default: *)
//   - RATE_LIMIT_REQUESTS / RATE_LIMIT_WINDOW: API rate limiting
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// ClusteringConfig holds the default spatial clustering parameters.
// Requests may override both per call; these apply when a request
// leaves them unset.
type ClusteringConfig struct {
	DefaultRadiusMeters   float64 `koanf:"default_radius_meters"`
	DefaultMinClusterSize int     `koanf:"default_min_cluster_size"`
	NodeCapacity          int     `koanf:"node_capacity"`
}

// RoomsConfig holds subscription room settings.
type RoomsConfig struct {
	ProximityRadiusMeters float64 `koanf:"proximity_radius_meters"`
}

// SynthesisConfig holds alert synthesis settings. Mode selects the
// summarizer backend: "static" uses the built-in template summarizer,
// "none" disables synthesis entirely and every cluster takes the
// fallback path.
type SynthesisConfig struct {
	Mode             string        `koanf:"mode"`
	Timeout          time.Duration `koanf:"timeout"`
	FailureThreshold uint32        `koanf:"failure_threshold"`
	RecoveryTimeout  time.Duration `koanf:"recovery_timeout"`
	MonitoringPeriod time.Duration `koanf:"monitoring_period"`
	RateLimit        float64       `koanf:"rate_limit"`
}

// ArchiveConfig holds alert/cluster persistence settings. An empty
// path selects an in-memory store; Enabled=false disables archival.
type ArchiveConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks that the loaded configuration is internally consistent.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateClustering(); err != nil {
		return err
	}
	if err := c.validateRooms(); err != nil {
		return err
	}
	if err := c.validateSynthesis(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.Server.Timeout)
	}
	if c.Server.RateLimitReqs < 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must not be negative, got %d", c.Server.RateLimitReqs)
	}
	return nil
}

func (c *Config) validateClustering() error {
	if c.Clustering.DefaultRadiusMeters <= 0 {
		return fmt.Errorf("CLUSTER_RADIUS_METERS must be positive, got %g", c.Clustering.DefaultRadiusMeters)
	}
	if c.Clustering.DefaultMinClusterSize < 2 {
		return fmt.Errorf("CLUSTER_MIN_SIZE must be at least 2, got %d", c.Clustering.DefaultMinClusterSize)
	}
	if c.Clustering.NodeCapacity < 4 {
		return fmt.Errorf("CLUSTER_NODE_CAPACITY must be at least 4, got %d", c.Clustering.NodeCapacity)
	}
	return nil
}

func (c *Config) validateRooms() error {
	if c.Rooms.ProximityRadiusMeters <= 0 {
		return fmt.Errorf("ROOM_PROXIMITY_RADIUS_METERS must be positive, got %g", c.Rooms.ProximityRadiusMeters)
	}
	return nil
}

func (c *Config) validateSynthesis() error {
	switch c.Synthesis.Mode {
	case "static", "none":
	default:
		return fmt.Errorf("SYNTHESIS_MODE must be one of: static, none (got %q)", c.Synthesis.Mode)
	}
	if c.Synthesis.Timeout <= 0 {
		return fmt.Errorf("SYNTHESIS_TIMEOUT must be positive, got %s", c.Synthesis.Timeout)
	}
	if c.Synthesis.FailureThreshold == 0 {
		return fmt.Errorf("SYNTHESIS_FAILURE_THRESHOLD must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error, fatal, panic (got %q)", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be one of: json, console (got %q)", c.Logging.Format)
	}
	return nil
}

// Addr returns the host:port pair the HTTP server binds to.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
