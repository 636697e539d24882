// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/civic-mind/civicmesh/internal/logging"
)

func TestRequestID_GeneratesID(t *testing.T) {
	var capturedID string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedID = GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()

	RequestID(handler).ServeHTTP(rec, req)

	if capturedID == "" {
		t.Fatal("no request ID found in context")
	}
	if _, err := uuid.Parse(capturedID); err != nil {
		t.Errorf("generated request ID %q is not a UUID: %v", capturedID, err)
	}
	if got := rec.Header().Get("X-Request-ID"); got != capturedID {
		t.Errorf("response header X-Request-ID = %q, want %q", got, capturedID)
	}
}

func TestRequestID_HonorsUpstreamHeader(t *testing.T) {
	const upstream = "proxy-assigned-id-123"

	var capturedID string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedID = GetRequestID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", upstream)
	rec := httptest.NewRecorder()

	RequestID(handler).ServeHTTP(rec, req)

	if capturedID != upstream {
		t.Errorf("context request ID = %q, want the upstream %q", capturedID, upstream)
	}
	if got := rec.Header().Get("X-Request-ID"); got != upstream {
		t.Errorf("response header X-Request-ID = %q, want %q", got, upstream)
	}
}

func TestRequestID_AttachesCorrelationID(t *testing.T) {
	var correlationID string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID = logging.CorrelationIDFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	RequestID(handler).ServeHTTP(httptest.NewRecorder(), req)

	if correlationID == "" {
		t.Error("no correlation ID attached to the request context")
	}
}

func TestRequestID_UniquePerRequest(t *testing.T) {
	seen := make(map[string]bool)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen[GetRequestID(r.Context())] = true
	})
	wrapped := RequestID(handler)

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		wrapped.ServeHTTP(httptest.NewRecorder(), req)
	}

	if len(seen) != 10 {
		t.Errorf("10 requests produced %d distinct IDs", len(seen))
	}
}

func TestGetRequestID_MissingFromContext(t *testing.T) {
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID on bare context = %q, want empty", got)
	}
}
