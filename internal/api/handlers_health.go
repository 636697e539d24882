// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

package api

import (
	"net/http"
	"time"
)

// healthResponse is the body of GET /api/v1/health.
type healthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
	Connections   int    `json:"connections"`
	Rooms         int    `json:"rooms"`
	BreakerState  string `json:"synthesisBreakerState"`
}

// Health reports liveness plus a coarse view of the realtime layer and
// the synthesis circuit breaker. Always returns 200 while the process is
// serving; a degraded breaker is reported in the body, not the status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	stats := h.directory.Stats()

	respondData(w, http.StatusOK, healthResponse{
		Status:        "healthy",
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Connections:   h.wsHub.ClientCount(),
		Rooms:         stats.TotalRooms,
		BreakerState:  h.orchestrator.BreakerState(),
	}, 0)
}

// realtimeStatsResponse is the body of GET /api/v1/realtime/stats.
type realtimeStatsResponse struct {
	Connections  int           `json:"connections"`
	TotalRooms   int           `json:"totalRooms"`
	TotalMembers int           `json:"totalMembers"`
	Rooms        []roomSummary `json:"rooms"`
}

type roomSummary struct {
	ID         string `json:"id"`
	Region     string `json:"region"`
	Members    int    `json:"members"`
	AgeMinutes int    `json:"ageMinutes"`
}

// RealtimeStats returns a snapshot of the room directory and hub.
func (h *Handler) RealtimeStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	stats := h.directory.Stats()

	roomList := make([]roomSummary, len(stats.Rooms))
	for i, rm := range stats.Rooms {
		roomList[i] = roomSummary{
			ID:         rm.RoomID,
			Region:     rm.Region,
			Members:    rm.MemberCount,
			AgeMinutes: rm.AgeMinutes,
		}
	}

	respondData(w, http.StatusOK, realtimeStatsResponse{
		Connections:  h.wsHub.ClientCount(),
		TotalRooms:   stats.TotalRooms,
		TotalMembers: stats.TotalMembers,
		Rooms:        roomList,
	}, time.Since(start))
}
