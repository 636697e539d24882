// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

package websocket

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/civic-mind/civicmesh/internal/logging"
	"github.com/civic-mind/civicmesh/internal/metrics"
	"github.com/civic-mind/civicmesh/internal/models"
)

// Message types on the wire.
const (
	MessageTypeAlertNew                = "alert:new"
	MessageTypeClusterUpdate           = "cluster:update"
	MessageTypeConnectionEstablished   = "connection:established"
	MessageTypeSubscriptionConfirmed   = "subscription:confirmed"
	MessageTypeUnsubscriptionConfirmed = "unsubscription:confirmed"
	MessageTypeSubscribe               = "subscribe"
	MessageTypeUnsubscribe             = "unsubscribe"
	MessageTypePing                    = "ping"
	MessageTypePong                    = "pong"
	MessageTypeError                   = "error"
)

// ErrConnectionGone is returned when a send targets a connection the hub no
// longer tracks.
var ErrConnectionGone = errors.New("websocket: connection not registered")

// ErrSendBufferFull is returned when a client's send buffer is full and the
// payload was dropped for that client.
var ErrSendBufferFull = errors.New("websocket: client send buffer full, payload dropped")

// Message is a typed envelope for everything crossing the socket.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Directory is the subset of the room directory the hub and its clients
// drive from connection lifecycle events.
type Directory interface {
	Subscribe(connectionID, region, userID string, coords *models.Coordinates)
	Unsubscribe(connectionID, region string)
	UnsubscribeAll(connectionID string)
}

// Hub tracks live clients keyed by connection id and hands lifecycle events
// to the room directory.
type Hub struct {
	directory  Directory
	clients    map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a hub bound to the given directory.
func NewHub(directory Directory) *Hub {
	return &Hub{
		directory:  directory,
		clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// RunWithContext processes client lifecycle events until the context is
// canceled, then closes every client and returns ctx.Err(). Designed for
// suture supervision: a supervisor can restart the hub without leaving
// orphaned connections.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.closeAllClients()
			logging.Info().
				Str("component", "websocket-hub").
				Msg("websocket hub stopped")
			return ctx.Err()

		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client.id] = client
			total := len(h.clients)
			h.mu.Unlock()
			metrics.WebSocketConnections.Set(float64(total))
			logging.Info().Int("total_clients", total).Str("connection", client.id).Msg("websocket client connected")

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()

			// The transport owns reconnect; from the directory's point of
			// view this connection is simply gone.
			h.directory.UnsubscribeAll(client.id)
			metrics.WebSocketConnections.Set(float64(total))
			logging.Info().Int("total_clients", total).Str("connection", client.id).Msg("websocket client disconnected")
		}
	}
}

// SendTo queues a message for one connection. The send is non-blocking: a
// full buffer drops the payload and reports ErrSendBufferFull. The read
// lock is held across the send so the channel cannot be closed underneath
// it; close only happens under the exclusive lock.
func (h *Hub) SendTo(connectionID string, msg Message) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[connectionID]
	if !ok {
		return ErrConnectionGone
	}

	select {
	case client.send <- msg:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// closeAllClients closes every connected client during shutdown.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, client := range h.clients {
		close(client.send)
		delete(h.clients, id)
		h.directory.UnsubscribeAll(id)
	}
	metrics.WebSocketConnections.Set(0)
	logging.Info().Msg("closed all websocket clients during shutdown")
}

// BroadcastEnvelope wraps a broadcast payload with server-side timing,
// matching the shape the dashboard expects.
type BroadcastEnvelope struct {
	Payload            any    `json:"payload"`
	BroadcastTimestamp int64  `json:"broadcastTimestamp"`
	ServerTime         string `json:"serverTime"`
}

// Envelope builds the standard broadcast envelope around a payload.
func Envelope(payload any) BroadcastEnvelope {
	now := time.Now().UTC()
	return BroadcastEnvelope{
		Payload:            payload,
		BroadcastTimestamp: now.UnixMilli(),
		ServerTime:         now.Format(time.RFC3339),
	}
}
