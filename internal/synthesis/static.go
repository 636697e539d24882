// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

package synthesis

import (
	"context"
	"fmt"

	"github.com/civic-mind/civicmesh/internal/models"
)

// StaticSummarizer is a deterministic in-process summarizer used when no AI
// backend is configured (synthesis.mode=static). It produces a serviceable
// draft from cluster data alone, so the rest of the pipeline behaves exactly
// as it does in production.
type StaticSummarizer struct{}

// NewStaticSummarizer returns the development summarizer.
func NewStaticSummarizer() *StaticSummarizer {
	return &StaticSummarizer{}
}

var staticRecommendations = map[models.Severity]string{
	models.SeverityLow:      "No action required; situation is being tracked",
	models.SeverityMedium:   "Exercise caution and report further issues",
	models.SeverityHigh:     "Avoid the affected area and follow official guidance",
	models.SeverityCritical: "Leave the affected area and contact emergency services",
}

// Summarize implements Summarizer.
func (s *StaticSummarizer) Summarize(_ context.Context, cluster *models.Cluster) (*Summary, error) {
	confidence := 85
	area := cluster.Center.Area
	if area == "" {
		area = cluster.Center.Address
	}
	if area == "" {
		area = "the area"
	}

	category := "civic"
	if len(cluster.Categories) > 0 {
		category = string(cluster.Categories[0])
	}

	return &Summary{
		Summary:        fmt.Sprintf("%d related %s reports in %s", len(cluster.Events), category, area),
		Recommendation: staticRecommendations[cluster.Severity],
		Severity:       cluster.Severity,
		Confidence:     &confidence,
		Model:          "static",
	}, nil
}
