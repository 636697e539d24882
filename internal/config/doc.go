// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

/*
Package config provides centralized configuration management for CivicMesh.

Configuration is loaded with Koanf v2 from three layered sources, later
sources overriding earlier ones:

 1. Built-in defaults
 2. Optional YAML config file (config.yaml, or CONFIG_PATH)
 3. Environment variables via an explicit mapping table

The explicit environment mapping means only known variables reach the
config; arbitrary environment noise is ignored. The loaded Config is
validated before use and is immutable afterwards, so it is safe to share
across goroutines.

Configuration groups:

  - ServerConfig: HTTP bind address, timeouts, CORS, rate limiting
  - ClusteringConfig: default spatial clustering parameters
  - RoomsConfig: subscription room proximity radius
  - SynthesisConfig: summarizer mode, timeout, circuit breaker tuning
  - ArchiveConfig: alert/cluster persistence
  - LoggingConfig: log level and output format
*/
package config
