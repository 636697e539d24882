// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

// Package rooms tracks which live connections are interested in which
// regions. Connections subscribe into region-labeled rooms; the dispatcher
// asks the directory which rooms should receive an alert at a given
// location, matched by region label, room bounding box, or member
// proximity.
//
// The directory is the pipeline's shared mutable state: mutations and
// lookups are serialized behind a single lock, so lookups always observe a
// consistent snapshot of any room they inspect.
package rooms
