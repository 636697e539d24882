// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

// Package models defines the domain types shared across the intelligence
// pipeline: reported events, spatial clusters, synthesized alerts, and the
// subscription records kept by the room directory.
//
// The JSON field names on these types form the minimal wire contract with
// the external collaborators (ingestion, persistence, push transport) and
// must not be renamed casually.
package models
