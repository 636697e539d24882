// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/civic-mind/civicmesh/internal/geo"
	"github.com/civic-mind/civicmesh/internal/logging"
	"github.com/civic-mind/civicmesh/internal/models"
	"github.com/civic-mind/civicmesh/internal/pipeline"
	"github.com/civic-mind/civicmesh/internal/validation"
)

// maxBatchSize bounds one processing request. Larger batches should be
// split by the caller.
const maxBatchSize = 1000

// eventInput is the wire shape of one reported event. ID and Timestamp
// are optional; missing values are filled server-side.
type eventInput struct {
	ID          string        `json:"id" validate:"omitempty,uuid"`
	Title       string        `json:"title" validate:"required,max=200"`
	Description string        `json:"description" validate:"max=2000"`
	Category    string        `json:"category" validate:"required,max=50"`
	Severity    string        `json:"severity" validate:"required,severity"`
	Location    locationInput `json:"location" validate:"required"`
	Timestamp   string        `json:"timestamp" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	ReporterID  string        `json:"reporterId" validate:"max=100"`
}

type locationInput struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	Address   string  `json:"address" validate:"max=300"`
	Area      string  `json:"area" validate:"max=100"`
	Region    string  `json:"region" validate:"max=100"`
}

// processRequest is the body of POST /api/v1/intelligence/process.
// Zero-valued clustering parameters take the configured defaults;
// out-of-range values are rejected, never clamped.
type processRequest struct {
	Events         []eventInput `json:"events" validate:"required,min=1,dive"`
	RadiusMeters   float64      `json:"radiusMeters" validate:"omitempty,gt=0"`
	MinClusterSize int          `json:"minClusterSize" validate:"omitempty,min=1"`
}

// ProcessIntelligence runs the full pipeline over one event batch:
// clustering, alert synthesis, broadcast, archival. The response carries
// the produced clusters, outliers, alerts and run metrics.
func (h *Handler) ProcessIntelligence(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Request body is not valid JSON", nil)
		return
	}

	if len(req.Events) > maxBatchSize {
		respondError(w, http.StatusBadRequest, "BATCH_TOO_LARGE",
			"Event batch exceeds the maximum of 1000 events", nil)
		return
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	events := make([]models.Event, len(req.Events))
	for i, in := range req.Events {
		events[i] = toEvent(in)
	}

	opts := pipeline.Options{
		RadiusMeters:   req.RadiusMeters,
		MinClusterSize: req.MinClusterSize,
	}
	if opts.RadiusMeters == 0 {
		opts.RadiusMeters = h.config.Clustering.DefaultRadiusMeters
	}
	if opts.MinClusterSize == 0 {
		opts.MinClusterSize = h.config.Clustering.DefaultMinClusterSize
	}

	result, err := h.pipeline.Process(r.Context(), events, opts)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	logging.Ctx(r.Context()).Info().
		Int("events", len(events)).
		Int("clusters", len(result.Clusters)).
		Int("alerts", len(result.Alerts)).
		Msg("intelligence batch processed")

	respondData(w, http.StatusOK, result, time.Since(start))
}

// toEvent converts validated wire input into the domain model, filling
// server-side fields: missing IDs and timestamps, and the location geohash.
func toEvent(in eventInput) models.Event {
	ev := models.Event{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		Category:    models.Category(in.Category),
		Severity:    models.Severity(in.Severity),
		Location: models.Location{
			Latitude:  in.Location.Latitude,
			Longitude: in.Location.Longitude,
			Address:   in.Location.Address,
			Area:      in.Location.Area,
			Region:    in.Location.Region,
		},
		ReporterID: in.ReporterID,
	}

	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if in.Timestamp != "" {
		// Format already validated; parse cannot fail here.
		ev.Timestamp, _ = time.Parse(time.RFC3339, in.Timestamp)
	} else {
		ev.Timestamp = time.Now()
	}
	if hash, err := geo.EncodeGeohash(ev.Location.Latitude, ev.Location.Longitude, geo.DefaultGeohashPrecision); err == nil {
		ev.Location.Geohash = hash
	}

	return ev
}
