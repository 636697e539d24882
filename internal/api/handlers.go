// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/civic-mind/civicmesh/internal/config"
	"github.com/civic-mind/civicmesh/internal/logging"
	"github.com/civic-mind/civicmesh/internal/models"
	"github.com/civic-mind/civicmesh/internal/pipeline"
	"github.com/civic-mind/civicmesh/internal/rooms"
	"github.com/civic-mind/civicmesh/internal/synthesis"
	ws "github.com/civic-mind/civicmesh/internal/websocket"
)

// Handler contains dependencies for API handlers.
//
// Handler methods are split across multiple files:
//   - handlers.go: Handler struct, constructor, response helpers (this file)
//   - handlers_intelligence.go: event batch processing endpoint
//   - handlers_health.go: health and realtime stats endpoints
//   - handlers_ws.go: WebSocket upgrade endpoint
type Handler struct {
	config       *config.Config
	pipeline     *pipeline.Pipeline
	directory    *rooms.Directory
	orchestrator *synthesis.Orchestrator
	wsHub        *ws.Hub
	startTime    time.Time
}

// NewHandler creates a new API handler with all required dependencies.
func NewHandler(cfg *config.Config, pl *pipeline.Pipeline, directory *rooms.Directory, orchestrator *synthesis.Orchestrator, wsHub *ws.Hub) *Handler {
	return &Handler{
		config:       cfg,
		pipeline:     pl,
		directory:    directory,
		orchestrator: orchestrator,
		wsHub:        wsHub,
		startTime:    time.Now(),
	}
}

// sanitizeLogValue removes control characters from strings to prevent log
// injection. Newlines and other control characters could otherwise let a
// client forge log entries.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with proper headers.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("ETag", generateETag(data))

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// generateETag creates a simple ETag from data using FNV-1a hash.
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return strconv.FormatUint(uint64(hash), 16)
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, code, message string, details map[string]interface{}) {
	logging.Warn().Str("code", sanitizeLogValue(code)).Str("message", sanitizeLogValue(message)).Msg("API error")

	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Data:   nil,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// respondData sends a success response wrapping data in the API envelope.
func respondData(w http.ResponseWriter, status int, data interface{}, queryTime time.Duration) {
	respondJSON(w, status, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: queryTime.Milliseconds(),
		},
	})
}
