// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

// Package dispatch fans alerts and cluster updates out to the live
// connections whose rooms match the payload's location. Delivery is
// at-least-once, best-effort: a failure for one connection is logged and
// never blocks delivery to the rest, and nothing is retried here (the
// transport owns reconnect and replay).
package dispatch

import (
	"github.com/civic-mind/civicmesh/internal/logging"
	"github.com/civic-mind/civicmesh/internal/metrics"
	"github.com/civic-mind/civicmesh/internal/models"
	"github.com/civic-mind/civicmesh/internal/websocket"
)

// Directory resolves which rooms and members should receive a payload.
// Satisfied by *rooms.Directory.
type Directory interface {
	RoomsForLocation(loc models.Location) []string
	Members(roomID string) []string
}

// Sender pushes one message to one live connection. Satisfied by
// *websocket.Hub.
type Sender interface {
	SendTo(connectionID string, msg websocket.Message) error
}

// Dispatcher resolves subscriber sets and pushes payloads to them.
type Dispatcher struct {
	directory Directory
	sender    Sender
}

// NewDispatcher wires a dispatcher to its directory and transport.
func NewDispatcher(directory Directory, sender Sender) *Dispatcher {
	return &Dispatcher{directory: directory, sender: sender}
}

// BroadcastAlert delivers a synthesized alert to every connection in every
// room matching the alert's location.
func (d *Dispatcher) BroadcastAlert(alert *models.Alert) {
	delivered, failed, roomCount := d.broadcast(websocket.MessageTypeAlertNew, alert.Location, alert)
	logging.Info().
		Str("alert", alert.ID).
		Str("severity", string(alert.Severity)).
		Int("rooms", roomCount).
		Int("delivered", delivered).
		Int("failed", failed).
		Msg("alert broadcast")
}

// BroadcastClusterUpdate delivers a cluster update to every connection in
// every room matching the cluster's center.
func (d *Dispatcher) BroadcastClusterUpdate(cluster *models.Cluster) {
	delivered, failed, roomCount := d.broadcast(websocket.MessageTypeClusterUpdate, cluster.Center, cluster)
	logging.Debug().
		Str("cluster", cluster.ID).
		Int("events", len(cluster.Events)).
		Int("rooms", roomCount).
		Int("delivered", delivered).
		Int("failed", failed).
		Msg("cluster update broadcast")
}

// broadcast resolves the target rooms, deduplicates their members (a
// connection in several matching rooms receives the payload once), and
// pushes the enveloped payload to each connection.
func (d *Dispatcher) broadcast(messageType string, loc models.Location, payload any) (delivered, failed, roomCount int) {
	roomIDs := d.directory.RoomsForLocation(loc)
	msg := websocket.Message{Type: messageType, Data: websocket.Envelope(payload)}

	seen := make(map[string]struct{})
	for _, roomID := range roomIDs {
		for _, connID := range d.directory.Members(roomID) {
			if _, dup := seen[connID]; dup {
				continue
			}
			seen[connID] = struct{}{}

			metrics.BroadcastRecipients.Inc()
			if err := d.sender.SendTo(connID, msg); err != nil {
				failed++
				metrics.BroadcastFailures.Inc()
				logging.Warn().
					Err(err).
					Str("connection", connID).
					Str("room", roomID).
					Str("type", messageType).
					Msg("delivery failed, continuing with remaining connections")
				continue
			}
			delivered++
		}
	}

	metrics.BroadcastsTotal.WithLabelValues(messageType).Inc()
	return delivered, failed, len(roomIDs)
}
