// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

package clustering

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/civic-mind/civicmesh/internal/geo"
	"github.com/civic-mind/civicmesh/internal/logging"
	"github.com/civic-mind/civicmesh/internal/metrics"
	"github.com/civic-mind/civicmesh/internal/models"
	"github.com/civic-mind/civicmesh/internal/spatial"
)

var (
	// ErrInvalidRadius is returned when the clustering radius is not positive.
	ErrInvalidRadius = errors.New("clustering: radius must be positive")

	// ErrInvalidMinClusterSize is returned when the minimum cluster size is
	// below one.
	ErrInvalidMinClusterSize = errors.New("clustering: minClusterSize must be at least 1")
)

// Metrics summarizes one clustering pass.
type Metrics struct {
	TotalEvents     int           `json:"totalEvents"`
	ClusteredEvents int           `json:"clusteredEvents"`
	ClusterCount    int           `json:"clusterCount"`
	ProcessingTime  time.Duration `json:"processingTime"`
}

// Result is the outcome of one clustering pass: the clusters, the events no
// cluster claimed, and the pass metrics. Clusters and outliers partition the
// input exactly.
type Result struct {
	Clusters []models.Cluster `json:"clusters"`
	Outliers []models.Event   `json:"outliers"`
	Metrics  Metrics          `json:"metrics"`
}

// Engine performs clustering passes. The zero value is not usable; call
// NewEngine.
type Engine struct {
	nodeCapacity int
	now          func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithNodeCapacity overrides the spatial index node capacity.
func WithNodeCapacity(capacity int) Option {
	return func(e *Engine) { e.nodeCapacity = capacity }
}

// WithClock overrides the engine's time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a clustering engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		nodeCapacity: spatial.DefaultMaxEntries,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Cluster runs one greedy clustering pass over the batch. The radius is in
// meters; minClusterSize is the smallest group (seed included) that becomes
// a cluster. Invalid parameters are rejected, never clamped. An empty batch
// yields an empty result, not an error.
func (e *Engine) Cluster(events []models.Event, radius float64, minClusterSize int) (*Result, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidRadius, radius)
	}
	if minClusterSize < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMinClusterSize, minClusterSize)
	}

	start := e.now()

	if len(events) == 0 {
		return &Result{
			Clusters: []models.Cluster{},
			Outliers: []models.Event{},
			Metrics:  Metrics{ProcessingTime: e.now().Sub(start)},
		}, nil
	}

	logging.Debug().
		Int("events", len(events)).
		Float64("radius_m", radius).
		Int("min_cluster_size", minClusterSize).
		Msg("starting clustering pass")

	// Index every event position up front so each seed's neighbor scan is a
	// bounding-square lookup instead of a full linear pass.
	index := spatial.New(e.nodeCapacity)
	for i, ev := range events {
		index.Insert(spatial.Point(ev.Location.Latitude, ev.Location.Longitude), i)
	}

	processed := make(map[string]bool, len(events))
	var clusters []models.Cluster

	for _, seed := range events {
		if processed[seed.ID] {
			continue
		}

		nearby := e.nearbyGroup(events, index, seed, radius, processed)
		if len(nearby) < minClusterSize {
			// The seed stays unclaimed for now; a later seed may still
			// absorb it. It only becomes an outlier after the full pass.
			continue
		}

		cluster := e.materialize(nearby, radius)
		for _, member := range nearby {
			processed[member.ID] = true
		}
		clusters = append(clusters, cluster)
	}

	var outliers []models.Event
	for _, ev := range events {
		if !processed[ev.ID] {
			outliers = append(outliers, ev)
		}
	}

	elapsed := e.now().Sub(start)
	result := &Result{
		Clusters: clusters,
		Outliers: outliers,
		Metrics: Metrics{
			TotalEvents:     len(events),
			ClusteredEvents: len(events) - len(outliers),
			ClusterCount:    len(clusters),
			ProcessingTime:  elapsed,
		},
	}

	metrics.RecordClusteringPass(result.Metrics.ClusteredEvents, len(outliers), len(clusters), elapsed)
	logging.Info().
		Int("events", len(events)).
		Int("clusters", len(clusters)).
		Int("outliers", len(outliers)).
		Dur("elapsed", elapsed).
		Msg("clustering pass completed")

	return result, nil
}

// nearbyGroup returns the seed plus every unclaimed event within radius
// meters of it, in input order. The index lookup is a superset prefilter;
// candidate order is restored by sorting on input position so the result is
// identical to a linear scan.
func (e *Engine) nearbyGroup(events []models.Event, index *spatial.Index, seed models.Event, radius float64, processed map[string]bool) []models.Event {
	candidates := index.SearchWithinRadius(seed.Location.Latitude, seed.Location.Longitude, radius)

	positions := make([]int, 0, len(candidates))
	for _, c := range candidates {
		pos := c.Payload.(int)
		other := events[pos]
		if other.ID == seed.ID || processed[other.ID] {
			continue
		}
		// The index confirms center-to-center distance already, but the
		// entry center and the event position are the same point here, so
		// this is the exact seed-to-candidate haversine test.
		if geo.Distance(seed.Location.Latitude, seed.Location.Longitude,
			other.Location.Latitude, other.Location.Longitude) <= radius {
			positions = append(positions, pos)
		}
	}
	sort.Ints(positions)

	group := make([]models.Event, 0, len(positions)+1)
	group = append(group, seed)
	for _, pos := range positions {
		group = append(group, events[pos])
	}
	return group
}

// materialize builds an immutable cluster from a nearby group.
func (e *Engine) materialize(members []models.Event, radius float64) models.Cluster {
	var sumLat, sumLon float64
	for _, m := range members {
		sumLat += m.Location.Latitude
		sumLon += m.Location.Longitude
	}
	centerLat := sumLat / float64(len(members))
	centerLon := sumLon / float64(len(members))

	severity := models.SeverityLow
	seen := make(map[models.Category]bool, len(members))
	var categories []models.Category
	for _, m := range members {
		severity = models.MaxSeverity(severity, m.Severity)
		if !seen[m.Category] {
			seen[m.Category] = true
			categories = append(categories, m.Category)
		}
	}

	ordered := append([]models.Event(nil), members...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.After(ordered[j].Timestamp)
	})

	now := e.now().UTC()
	return models.Cluster{
		ID:     uuid.New().String(),
		Events: ordered,
		Center: models.Location{
			Latitude:  centerLat,
			Longitude: centerLon,
			Address:   clusterAddress(members, centerLat, centerLon),
		},
		Radius:     radius,
		Severity:   severity,
		Categories: categories,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// clusterAddress derives a human-readable label for the cluster: the most
// common leading address component among members, or a coordinate label
// when no member carries an address.
func clusterAddress(members []models.Event, centerLat, centerLon float64) string {
	counts := make(map[string]int)
	var best string
	for _, m := range members {
		addr := m.Location.Address
		if addr == "" {
			continue
		}
		part, _, _ := strings.Cut(addr, ",")
		counts[part]++
		if best == "" || counts[part] > counts[best] {
			best = part
		}
	}
	if best != "" {
		return best
	}
	return fmt.Sprintf("Area near %.4f, %.4f", centerLat, centerLon)
}
