// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countingService counts how often it is (re)started.
type countingService struct {
	starts atomic.Int32
	fail   bool
}

func (s *countingService) Serve(ctx context.Context) error {
	s.starts.Add(1)
	if s.fail {
		return errors.New("boom")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *countingService) String() string { return "counting-service" }

func TestNewTree_ZeroConfigGetsDefaults(t *testing.T) {
	tree := NewTree(discardLogger(), TreeConfig{})

	if tree.config.FailureThreshold != 5.0 {
		t.Errorf("FailureThreshold = %v, want 5.0", tree.config.FailureThreshold)
	}
	if tree.config.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", tree.config.ShutdownTimeout)
	}
	if tree.Root() == nil {
		t.Fatal("Root() = nil")
	}
}

func TestTree_ServeAndShutdown(t *testing.T) {
	tree := NewTree(discardLogger(), DefaultTreeConfig())

	realtime := &countingService{}
	api := &countingService{}
	tree.AddRealtimeService(realtime)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tree.Serve(ctx) }()

	// Both layers start their services.
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if realtime.starts.Load() > 0 && api.starts.Load() > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if realtime.starts.Load() == 0 || api.starts.Load() == 0 {
		t.Fatalf("services never started: realtime=%d api=%d", realtime.starts.Load(), api.starts.Load())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("tree did not stop after cancellation")
	}
}

func TestTree_RestartsFailedService(t *testing.T) {
	tree := NewTree(discardLogger(), DefaultTreeConfig())

	svc := &countingService{fail: true}
	tree.AddRealtimeService(svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = tree.Serve(ctx) }()

	// The supervisor restarts the crashing service.
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if svc.starts.Load() >= 2 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("service restarted %d times, want at least 2", svc.starts.Load())
}
