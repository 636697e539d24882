// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

// Package websocket maintains the set of live subscriber connections and
// delivers targeted payloads to them. Clients announce region interest with
// subscribe/unsubscribe messages, which the hub forwards to the room
// directory; a disconnect removes the connection from every room.
//
// Delivery is fire-and-forget: each client has a buffered send channel and
// a payload that cannot be queued is dropped for that client only.
package websocket
