// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

// mockServer scripts ListenAndServe and records Shutdown calls.
type mockServer struct {
	serveErr   error
	block      chan struct{} // ListenAndServe blocks until closed when set
	shutdowns  int
	shutdownCh chan struct{}
}

func (m *mockServer) ListenAndServe() error {
	if m.block != nil {
		<-m.block
	}
	return m.serveErr
}

func (m *mockServer) Shutdown(context.Context) error {
	m.shutdowns++
	if m.block != nil {
		close(m.block) // release ListenAndServe like the real server does
	}
	if m.shutdownCh != nil {
		close(m.shutdownCh)
	}
	return nil
}

func TestHTTPServerService_GracefulShutdown(t *testing.T) {
	srv := &mockServer{serveErr: http.ErrServerClosed, block: make(chan struct{})}
	svc := NewHTTPServerService(srv, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	// Give Serve a moment to start listening, then cancel.
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}

	if srv.shutdowns != 1 {
		t.Errorf("Shutdown called %d times, want 1", srv.shutdowns)
	}
}

func TestHTTPServerService_ListenFailure(t *testing.T) {
	srv := &mockServer{serveErr: errors.New("address already in use")}
	svc := NewHTTPServerService(srv, time.Second)

	err := svc.Serve(context.Background())
	if err == nil {
		t.Fatal("Serve() = nil, want the listen error")
	}
	if srv.shutdowns != 0 {
		t.Errorf("Shutdown called %d times on a listen failure, want 0", srv.shutdowns)
	}
}

func TestHTTPServerService_ErrServerClosedIsNotFailure(t *testing.T) {
	srv := &mockServer{serveErr: http.ErrServerClosed}
	svc := NewHTTPServerService(srv, time.Second)

	if err := svc.Serve(context.Background()); err != nil {
		t.Errorf("Serve() = %v, want nil for ErrServerClosed", err)
	}
}

func TestHTTPServerService_String(t *testing.T) {
	svc := NewHTTPServerService(&mockServer{}, time.Second)
	if svc.String() != "http-server" {
		t.Errorf("String() = %q", svc.String())
	}
}

// fakeHub records whether RunWithContext observed cancellation.
type fakeHub struct {
	ran bool
}

func (f *fakeHub) RunWithContext(ctx context.Context) error {
	f.ran = true
	<-ctx.Done()
	return ctx.Err()
}

func TestWebSocketHubService_DelegatesToHub(t *testing.T) {
	hub := &fakeHub{}
	svc := NewWebSocketHubService(hub)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}

	if !hub.ran {
		t.Error("hub RunWithContext never invoked")
	}
	if svc.String() != "websocket-hub" {
		t.Errorf("String() = %q", svc.String())
	}
}
