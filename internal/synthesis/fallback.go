// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

package synthesis

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/civic-mind/civicmesh/internal/models"
)

// Fallback confidence levels. The deterministic path reports lower
// confidence than any summarizer draft would; a malformed draft scores
// slightly higher than an outright failure because the backend at least
// responded.
const (
	fallbackConfidence  = 60
	malformedConfidence = 62
)

// fallbackAlert builds the deterministic alert used when the summarizer
// cannot. Everything in it derives from the cluster's own category,
// severity, and event-count data.
func fallbackAlert(cluster *models.Cluster, reason string, now time.Time) *models.Alert {
	confidence := fallbackConfidence
	if reason == "malformed" {
		confidence = malformedConfidence
	}

	return &models.Alert{
		ID:             uuid.New().String(),
		Summary:        truncate(fallbackSummary(cluster), maxSummaryLen),
		Recommendation: "Monitor the situation and follow local guidance",
		Severity:       cluster.Severity,
		Confidence:     confidence,
		Location:       cluster.Center,
		EventIDs:       cluster.EventIDs(),
		Timestamp:      now,
		Metadata: models.SynthesisMetadata{
			Model:        "fallback",
			FallbackUsed: true,
		},
	}
}

func fallbackSummary(cluster *models.Cluster) string {
	count := len(cluster.Events)
	if len(cluster.Categories) > 1 {
		names := make([]string, len(cluster.Categories))
		for i, c := range cluster.Categories {
			names[i] = string(c)
		}
		return fmt.Sprintf("Multiple issues reported: %s (%d events)", strings.Join(names, ", "), count)
	}

	category := "civic"
	if len(cluster.Categories) == 1 {
		category = string(cluster.Categories[0])
	}
	return fmt.Sprintf("%s issues reported in the area (%d events)", category, count)
}
