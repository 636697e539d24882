// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

// Package pipeline runs the end-to-end intelligence flow for one event
// batch: cluster the events, synthesize an alert per cluster, broadcast
// alerts and cluster updates to subscribers, and archive the results. The
// stages are sequential; independent batches may run concurrently because
// the clustering pass owns no shared state and the downstream components
// synchronize themselves.
package pipeline

import (
	"context"
	"time"

	"github.com/civic-mind/civicmesh/internal/clustering"
	"github.com/civic-mind/civicmesh/internal/logging"
	"github.com/civic-mind/civicmesh/internal/models"
)

// Synthesizer produces an alert for a cluster. Satisfied by
// *synthesis.Orchestrator. By contract it never fails.
type Synthesizer interface {
	Synthesize(ctx context.Context, cluster *models.Cluster) *models.Alert
}

// Broadcaster fans payloads out to live subscribers. Satisfied by
// *dispatch.Dispatcher.
type Broadcaster interface {
	BroadcastAlert(alert *models.Alert)
	BroadcastClusterUpdate(cluster *models.Cluster)
}

// Archiver hands produced objects to persistence. Satisfied by
// *archive.Store. Archive failures are best-effort and never abort the
// batch.
type Archiver interface {
	PutAlert(alert *models.Alert) error
	PutCluster(cluster *models.Cluster) error
}

// Options are the clustering parameters for one batch.
type Options struct {
	RadiusMeters   float64
	MinClusterSize int
}

// Metrics extends the clustering pass metrics with pipeline totals.
type Metrics struct {
	clustering.Metrics
	AlertsGenerated     int           `json:"alertsGenerated"`
	TotalProcessingTime time.Duration `json:"totalProcessingTime"`
}

// Result is the outcome of one pipeline run.
type Result struct {
	Clusters []models.Cluster `json:"clusters"`
	Outliers []models.Event   `json:"outliers"`
	Alerts   []*models.Alert  `json:"alerts"`
	Metrics  Metrics          `json:"metrics"`
}

// Pipeline owns the stage components. Construct with New; the caller owns
// the lifecycle of every dependency (nothing here is a hidden singleton).
type Pipeline struct {
	engine      *clustering.Engine
	synthesizer Synthesizer
	broadcaster Broadcaster
	archiver    Archiver
	now         func() time.Time
}

// New wires a pipeline. archiver may be nil when persistence is disabled.
func New(engine *clustering.Engine, synthesizer Synthesizer, broadcaster Broadcaster, archiver Archiver) *Pipeline {
	return &Pipeline{
		engine:      engine,
		synthesizer: synthesizer,
		broadcaster: broadcaster,
		archiver:    archiver,
		now:         time.Now,
	}
}

// Process runs the full flow over one validated batch. Invalid clustering
// parameters are the only error path; once clustering succeeds, every
// cluster yields an alert and delivery/archival problems are logged, not
// returned.
func (p *Pipeline) Process(ctx context.Context, events []models.Event, opts Options) (*Result, error) {
	start := p.now()

	clusterResult, err := p.engine.Cluster(events, opts.RadiusMeters, opts.MinClusterSize)
	if err != nil {
		return nil, err
	}

	alerts := make([]*models.Alert, 0, len(clusterResult.Clusters))
	for i := range clusterResult.Clusters {
		cluster := &clusterResult.Clusters[i]

		alert := p.synthesizer.Synthesize(ctx, cluster)
		alerts = append(alerts, alert)

		p.broadcaster.BroadcastAlert(alert)
		p.broadcaster.BroadcastClusterUpdate(cluster)
		p.archive(cluster, alert)
	}

	result := &Result{
		Clusters: clusterResult.Clusters,
		Outliers: clusterResult.Outliers,
		Alerts:   alerts,
		Metrics: Metrics{
			Metrics:             clusterResult.Metrics,
			AlertsGenerated:     len(alerts),
			TotalProcessingTime: p.now().Sub(start),
		},
	}

	logging.Info().
		Int("events", len(events)).
		Int("clusters", len(result.Clusters)).
		Int("alerts", len(alerts)).
		Dur("elapsed", result.Metrics.TotalProcessingTime).
		Msg("pipeline run completed")
	return result, nil
}

// archive hands the cluster and alert to persistence, best-effort.
func (p *Pipeline) archive(cluster *models.Cluster, alert *models.Alert) {
	if p.archiver == nil {
		return
	}
	if err := p.archiver.PutCluster(cluster); err != nil {
		logging.Warn().Err(err).Str("cluster", cluster.ID).Msg("cluster archive failed")
	}
	if err := p.archiver.PutAlert(alert); err != nil {
		logging.Warn().Err(err).Str("alert", alert.ID).Msg("alert archive failed")
	}
}
