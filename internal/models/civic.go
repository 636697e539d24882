// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

package models

import (
	"fmt"
	"time"
)

// Severity is the ordered urgency level of an event, cluster, or alert.
// The ordering LOW < MEDIUM < HIGH < CRITICAL is load-bearing: cluster
// severity is the maximum over its members.
type Severity string

// Severity levels in ascending order of urgency.
const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// severityRank maps each severity to its position in the ordering.
// Unknown severities rank below LOW so they never win a max comparison.
var severityRank = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// Rank returns the numeric position of s in the severity ordering,
// or 0 for an unrecognized value.
func (s Severity) Rank() int {
	return severityRank[s]
}

// Valid reports whether s is one of the four recognized levels.
func (s Severity) Valid() bool {
	return severityRank[s] != 0
}

// MaxSeverity returns the higher of a and b by severity ordering.
func MaxSeverity(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// Category classifies a civic event. The set is open: these are the
// well-known values, but ingestion may hand the core categories outside
// this list and they flow through unchanged.
type Category string

// Well-known event categories.
const (
	CategoryTraffic        Category = "traffic"
	CategoryInfrastructure Category = "infrastructure"
	CategorySafety         Category = "safety"
	CategoryEnvironment    Category = "environment"
	CategoryUtilities      Category = "utilities"
	CategoryOther          Category = "other"
)

// Coordinates is a bare latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the pair is within the valid lat/lon ranges.
func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// Location is a point on the map with optional resolved address metadata.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
	Area      string  `json:"area,omitempty"`
	Geohash   string  `json:"geohash,omitempty"`
	Region    string  `json:"region,omitempty"`
}

// Validate checks that the coordinates are within range.
func (l Location) Validate() error {
	if l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", l.Latitude)
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", l.Longitude)
	}
	return nil
}

// Event is one reported civic occurrence. Events are immutable once handed
// to the clustering engine; the engine references them, it never copies or
// mutates them.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    Category  `json:"category"`
	Severity    Severity  `json:"severity"`
	Location    Location  `json:"location"`
	Timestamp   time.Time `json:"timestamp"`
	ReporterID  string    `json:"reporterId"`
}

// Cluster is a group of events within a clustering radius of the seed event
// that anchored the group. Clusters are created atomically by one clustering
// pass and never mutated afterwards; a new pass produces new clusters.
type Cluster struct {
	ID     string `json:"id"`
	// Events is ordered timestamp-descending. Every member is within
	// Radius meters of the seed, not necessarily of Center.
	Events     []Event    `json:"events"`
	Center     Location   `json:"location"`
	Radius     float64    `json:"radius"`
	Severity   Severity   `json:"severity"`
	Categories []Category `json:"categories"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// EventIDs returns the ids of the member events in cluster order.
func (c *Cluster) EventIDs() []string {
	ids := make([]string, len(c.Events))
	for i, e := range c.Events {
		ids[i] = e.ID
	}
	return ids
}

// SynthesisMetadata records how an alert was produced.
type SynthesisMetadata struct {
	Model          string        `json:"model"`
	ProcessingTime time.Duration `json:"processingTime"`
	FallbackUsed   bool          `json:"fallbackUsed"`
}

// Alert is the synthesized, user-facing summary of one cluster. Alerts are
// immutable and terminal: the dispatcher fans them out and the external
// storage layer persists them.
type Alert struct {
	ID             string            `json:"id"`
	Summary        string            `json:"summary"`
	Recommendation string            `json:"recommendation"`
	Severity       Severity          `json:"severity"`
	Confidence     int               `json:"confidence"`
	Location       Location          `json:"location"`
	EventIDs       []string          `json:"eventIds"`
	Timestamp      time.Time         `json:"timestamp"`
	Metadata       SynthesisMetadata `json:"synthesisMetadata"`
}

// Subscription is a live connection's interest registration in one room.
type Subscription struct {
	ConnectionID string       `json:"connectionId"`
	UserID       string       `json:"userId,omitempty"`
	Region       string       `json:"region"`
	Coordinates  *Coordinates `json:"coordinates,omitempty"`
	JoinedAt     time.Time    `json:"joinedAt"`
}
