// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

package websocket

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/civic-mind/civicmesh/internal/logging"
	"github.com/civic-mind/civicmesh/internal/models"
	"github.com/civic-mind/civicmesh/internal/rooms"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024 // 64 KB; client messages are small commands
)

// Client is the middleman between one websocket connection and the hub.
type Client struct {
	id     string
	userID string
	hub    *Hub
	conn   *websocket.Conn
	send   chan Message
}

// NewClient creates a client for an upgraded connection. userID is empty
// for anonymous connections.
func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		id:     uuid.New().String(),
		userID: userID,
		hub:    hub,
		conn:   conn,
		send:   make(chan Message, 256),
	}
}

// ID returns the connection id.
func (c *Client) ID() string { return c.id }

// Start registers the client with the hub, greets the peer, and begins the
// read and write pumps.
func (c *Client) Start() {
	c.hub.Register <- c

	c.queue(Message{
		Type: MessageTypeConnectionEstablished,
		Data: map[string]any{
			"connectionId": c.id,
			"serverTime":   time.Now().UTC().Format(time.RFC3339),
		},
	})

	go c.writePump()
	go c.readPump()
}

// queue is a non-blocking send onto the client's own buffer.
func (c *Client) queue(msg Message) {
	select {
	case c.send <- msg:
	default:
		logging.Warn().Str("connection", c.id).Str("type", msg.Type).Msg("client send buffer full, dropping message")
	}
}

// inbound is the raw shape of a client command before its data is decoded.
type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// subscribeRequest is the data payload of subscribe/unsubscribe commands.
type subscribeRequest struct {
	Region      string              `json:"region"`
	Coordinates *models.Coordinates `json:"coordinates,omitempty"`
}

// readPump pumps commands from the connection into the directory.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister <- c
		_ = c.conn.Close() // best-effort cleanup
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg inbound
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error().Err(err).Str("connection", c.id).Msg("unexpected websocket close")
			}
			break
		}
		c.handle(msg)
	}
}

// handle dispatches one client command.
func (c *Client) handle(msg inbound) {
	switch msg.Type {
	case MessageTypePing:
		c.queue(Message{Type: MessageTypePong, Data: map[string]any{"timestamp": time.Now().UnixMilli()}})

	case MessageTypeSubscribe:
		var req subscribeRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil || req.Region == "" {
			c.queue(Message{Type: MessageTypeError, Data: map[string]any{"message": "invalid region specified"}})
			return
		}
		c.hub.directory.Subscribe(c.id, req.Region, c.userID, req.Coordinates)
		c.queue(Message{
			Type: MessageTypeSubscriptionConfirmed,
			Data: map[string]any{
				"region": req.Region,
				"roomId": rooms.RoomID(req.Region),
			},
		})

	case MessageTypeUnsubscribe:
		var req subscribeRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil || req.Region == "" {
			c.queue(Message{Type: MessageTypeError, Data: map[string]any{"message": "invalid region specified"}})
			return
		}
		c.hub.directory.Unsubscribe(c.id, req.Region)
		c.queue(Message{
			Type: MessageTypeUnsubscriptionConfirmed,
			Data: map[string]any{"region": req.Region},
		})

	default:
		logging.Debug().Str("connection", c.id).Str("type", msg.Type).Msg("ignoring unknown client message")
	}
}

// writePump pumps messages from the hub to the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // best-effort cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}
			if !ok {
				// The hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				logging.Error().Err(err).Str("connection", c.id).Msg("failed to write message")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
