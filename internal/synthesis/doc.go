// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

// Package synthesis turns clusters into user-facing alerts. The
// orchestrator wraps an external summarizer behind a circuit breaker and a
// per-call timeout; when the summarizer fails, rejects, or returns a
// malformed draft, a deterministic fallback alert is built from the
// cluster's own data. Synthesis never fails: every cluster yields an alert.
package synthesis
