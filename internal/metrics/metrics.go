// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

// Package metrics provides Prometheus instrumentation for the intelligence
// pipeline: clustering throughput, synthesis latency and fallback rate,
// circuit breaker state, room directory size, broadcast fan-out, and the
// HTTP API surface.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Clustering Engine metrics
	ClusteringDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clustering_duration_seconds",
			Help:    "Duration of one clustering pass in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ClusteringEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clustering_events_total",
			Help: "Total events seen by the clustering engine, by outcome",
		},
		[]string{"outcome"}, // "clustered", "outlier"
	)

	ClustersProduced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clustering_clusters_produced_total",
			Help: "Total clusters produced across all clustering passes",
		},
	)

	// Synthesis Orchestrator metrics
	SynthesisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "synthesis_duration_seconds",
			Help:    "End-to-end duration of cluster synthesis in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"fallback"}, // "true" when the deterministic fallback was used
	)

	SynthesisFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "synthesis_fallbacks_total",
			Help: "Total synthesis calls that fell back to the deterministic alert",
		},
		[]string{"reason"}, // "error", "breaker_open", "timeout", "malformed"
	)

	BreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "synthesis_breaker_state",
			Help: "Summarizer circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// Room directory metrics
	RoomCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rooms_active",
			Help: "Current number of active rooms",
		},
	)

	RoomMembers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rooms_members",
			Help: "Current number of room memberships across all rooms",
		},
	)

	// Broadcast Dispatcher metrics
	BroadcastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcasts_total",
			Help: "Total payloads broadcast to subscribers, by message type",
		},
		[]string{"type"}, // "alert:new", "cluster:update"
	)

	BroadcastRecipients = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_recipients_total",
			Help: "Total per-connection deliveries attempted by the dispatcher",
		},
	)

	BroadcastFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_failures_total",
			Help: "Total per-connection deliveries that failed (dropped, gone)",
		},
	)

	// WebSocket metrics
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections_active",
			Help: "Current number of connected WebSocket clients",
		},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)
)

// RecordClusteringPass records the outcome of one clustering pass.
func RecordClusteringPass(clustered, outliers, clusters int, duration time.Duration) {
	ClusteringDuration.Observe(duration.Seconds())
	ClusteringEventsTotal.WithLabelValues("clustered").Add(float64(clustered))
	ClusteringEventsTotal.WithLabelValues("outlier").Add(float64(outliers))
	ClustersProduced.Add(float64(clusters))
}

// RecordSynthesis records one synthesis call.
func RecordSynthesis(duration time.Duration, fallback bool) {
	SynthesisDuration.WithLabelValues(strconv.FormatBool(fallback)).Observe(duration.Seconds())
}

// RecordAPIRequest records a completed API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// SetRoomStats updates the room directory gauges.
func SetRoomStats(rooms, members int) {
	RoomCount.Set(float64(rooms))
	RoomMembers.Set(float64(members))
}
