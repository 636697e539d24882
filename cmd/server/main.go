// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

// Package main is the entry point for the CivicMesh server.
//
// CivicMesh turns raw civic issue reports into clustered, summarized,
// real-time alerts. The server initializes components in the following
// order:
//
//  1. Configuration: Koanf v2 layered loading (defaults, YAML file, env)
//  2. Logging: zerolog, JSON or console format
//  3. Room directory: subscription rooms for realtime fan-out
//  4. WebSocket hub: client connections and message delivery
//  5. Synthesis orchestrator: summarizer behind a circuit breaker
//  6. Archive: optional Badger-backed alert/cluster persistence
//  7. HTTP server: Chi-routed REST API plus /metrics
//  8. Supervisor tree: suture-managed lifecycle for hub and server
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: the supervisor
// cancels its services, the HTTP server drains in-flight requests, and
// the hub closes every client connection.
//
// # Example Usage
//
//	export HTTP_PORT=8080
//	export CLUSTER_RADIUS_METERS=500
//	export SYNTHESIS_MODE=static
//	./civicmesh
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/civic-mind/civicmesh/internal/api"
	"github.com/civic-mind/civicmesh/internal/archive"
	"github.com/civic-mind/civicmesh/internal/clustering"
	"github.com/civic-mind/civicmesh/internal/config"
	"github.com/civic-mind/civicmesh/internal/dispatch"
	"github.com/civic-mind/civicmesh/internal/logging"
	"github.com/civic-mind/civicmesh/internal/pipeline"
	"github.com/civic-mind/civicmesh/internal/rooms"
	"github.com/civic-mind/civicmesh/internal/supervisor"
	"github.com/civic-mind/civicmesh/internal/supervisor/services"
	"github.com/civic-mind/civicmesh/internal/synthesis"
	ws "github.com/civic-mind/civicmesh/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config not yet available; the default logger reports the failure.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Float64("cluster_radius_m", cfg.Clustering.DefaultRadiusMeters).
		Int("cluster_min_size", cfg.Clustering.DefaultMinClusterSize).
		Str("synthesis_mode", cfg.Synthesis.Mode).
		Bool("archive", cfg.Archive.Enabled).
		Msg("Starting CivicMesh")

	// Realtime layer: directory first, the hub needs it for subscription
	// bookkeeping on connect/disconnect.
	directory := rooms.NewDirectory(
		rooms.WithProximityRadius(cfg.Rooms.ProximityRadiusMeters),
	)
	hub := ws.NewHub(directory)
	dispatcher := dispatch.NewDispatcher(directory, hub)

	// Synthesis layer.
	var summarizer synthesis.Summarizer
	if cfg.Synthesis.Mode == "static" {
		summarizer = synthesis.NewStaticSummarizer()
	}
	orchestrator := synthesis.NewOrchestrator(summarizer, synthesis.Config{
		Timeout:          cfg.Synthesis.Timeout,
		FailureThreshold: cfg.Synthesis.FailureThreshold,
		RecoveryTimeout:  cfg.Synthesis.RecoveryTimeout,
		MonitoringPeriod: cfg.Synthesis.MonitoringPeriod,
		RateLimit:        cfg.Synthesis.RateLimit,
	})

	// Persistence layer.
	var store *archive.Store
	if cfg.Archive.Enabled {
		store, err = archive.Open(cfg.Archive.Path)
		if err != nil {
			logging.Fatal().Err(err).Str("path", cfg.Archive.Path).Msg("Failed to open archive")
		}
		defer func() {
			if err := store.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing archive")
			}
		}()
		logging.Info().Str("path", cfg.Archive.Path).Msg("Archive opened")
	}

	engine := clustering.NewEngine(
		clustering.WithNodeCapacity(cfg.Clustering.NodeCapacity),
	)

	var archiver pipeline.Archiver
	if store != nil {
		archiver = store
	}
	pl := pipeline.New(engine, orchestrator, dispatcher, archiver)

	handler := api.NewHandler(cfg, pl, directory, orchestrator, hub)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	// Supervision: the hub and HTTP server run under suture with automatic
	// restart; SIGINT/SIGTERM cancels the tree for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddRealtimeService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	logging.Info().Str("addr", cfg.Server.Addr()).Msg("CivicMesh listening")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal().Err(err).Msg("Supervisor tree exited with error")
	}

	logging.Info().Msg("CivicMesh stopped")
}
