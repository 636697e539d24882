// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

/*
Package api provides the HTTP surface of the service using the Chi router.

Endpoints:

  - POST /api/v1/intelligence/process: run the full intelligence pipeline
    over a batch of reported events (cluster, synthesize, broadcast, archive)
  - GET  /api/v1/health: liveness plus realtime layer and breaker state
  - GET  /api/v1/realtime/stats: room directory and connection snapshot
  - GET  /api/v1/ws: WebSocket upgrade for realtime subscriptions
  - GET  /metrics: Prometheus metrics

All JSON responses use the models.APIResponse envelope with a status,
data payload, metadata (timestamp, query time) and an optional structured
error. Request bodies are validated with go-playground/validator before
they reach the domain layer; invalid clustering parameters are rejected
with VALIDATION_ERROR, never silently clamped.

The middleware stack is request ID tracking, real IP resolution, panic
recovery, CORS, Prometheus instrumentation, and per-IP rate limiting via
go-chi/httprate.
*/
package api
