// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

/*
Package middleware provides HTTP middleware components for the API server.

Key Components:

  - RequestID: UUID-based request tracking for distributed tracing
  - PrometheusMetrics: HTTP request/response instrumentation

These sit alongside the chi ecosystem middleware (RealIP, Recoverer,
cors, httprate) in the router's middleware stack; see internal/api for
the full chain.
*/
package middleware
