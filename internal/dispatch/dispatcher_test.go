// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

package dispatch

import (
	"errors"
	"testing"

	"github.com/civic-mind/civicmesh/internal/models"
	"github.com/civic-mind/civicmesh/internal/websocket"
)

// fakeDirectory returns a fixed room-to-members mapping.
type fakeDirectory struct {
	rooms   []string
	members map[string][]string
}

func (f *fakeDirectory) RoomsForLocation(models.Location) []string { return f.rooms }
func (f *fakeDirectory) Members(roomID string) []string            { return f.members[roomID] }

// fakeSender records every push and fails for connections in failFor.
type fakeSender struct {
	sent    []string
	types   []string
	failFor map[string]bool
}

func (f *fakeSender) SendTo(connectionID string, msg websocket.Message) error {
	if f.failFor[connectionID] {
		return errors.New("connection gone")
	}
	f.sent = append(f.sent, connectionID)
	f.types = append(f.types, msg.Type)
	return nil
}

func testAlert() *models.Alert {
	return &models.Alert{
		ID:       "alert-1",
		Summary:  "pothole cluster",
		Severity: models.SeverityHigh,
		Location: models.Location{Latitude: 37.7749, Longitude: -122.4194},
	}
}

func TestBroadcastAlert_DeliversToEveryMember(t *testing.T) {
	dir := &fakeDirectory{
		rooms: []string{"region:downtown"},
		members: map[string][]string{
			"region:downtown": {"conn-1", "conn-2", "conn-3"},
		},
	}
	sender := &fakeSender{}
	d := NewDispatcher(dir, sender)

	d.BroadcastAlert(testAlert())

	if len(sender.sent) != 3 {
		t.Fatalf("delivered to %d connections, want 3: %v", len(sender.sent), sender.sent)
	}
	for _, msgType := range sender.types {
		if msgType != websocket.MessageTypeAlertNew {
			t.Errorf("message type = %q, want %q", msgType, websocket.MessageTypeAlertNew)
		}
	}
}

func TestBroadcast_DeduplicatesAcrossRooms(t *testing.T) {
	// conn-shared belongs to both matching rooms and must receive the
	// payload exactly once.
	dir := &fakeDirectory{
		rooms: []string{"region:downtown", "region:harbor"},
		members: map[string][]string{
			"region:downtown": {"conn-shared", "conn-a"},
			"region:harbor":   {"conn-shared", "conn-b"},
		},
	}
	sender := &fakeSender{}
	d := NewDispatcher(dir, sender)

	d.BroadcastAlert(testAlert())

	counts := make(map[string]int)
	for _, id := range sender.sent {
		counts[id]++
	}
	if counts["conn-shared"] != 1 {
		t.Errorf("conn-shared received %d deliveries, want 1", counts["conn-shared"])
	}
	if len(sender.sent) != 3 {
		t.Errorf("delivered %d messages, want 3 unique connections", len(sender.sent))
	}
}

func TestBroadcast_FailureDoesNotBlockOthers(t *testing.T) {
	dir := &fakeDirectory{
		rooms: []string{"region:downtown"},
		members: map[string][]string{
			"region:downtown": {"conn-1", "conn-dead", "conn-3"},
		},
	}
	sender := &fakeSender{failFor: map[string]bool{"conn-dead": true}}
	d := NewDispatcher(dir, sender)

	d.BroadcastAlert(testAlert())

	if len(sender.sent) != 2 {
		t.Errorf("delivered to %d connections, want the 2 live ones: %v", len(sender.sent), sender.sent)
	}
	for _, id := range sender.sent {
		if id == "conn-dead" {
			t.Error("dead connection recorded as delivered")
		}
	}
}

func TestBroadcast_NoMatchingRooms(t *testing.T) {
	dir := &fakeDirectory{rooms: nil}
	sender := &fakeSender{}
	d := NewDispatcher(dir, sender)

	d.BroadcastAlert(testAlert())

	if len(sender.sent) != 0 {
		t.Errorf("no rooms matched but %d deliveries happened", len(sender.sent))
	}
}

func TestBroadcastClusterUpdate_UsesClusterCenterAndType(t *testing.T) {
	dir := &fakeDirectory{
		rooms:   []string{"region:downtown"},
		members: map[string][]string{"region:downtown": {"conn-1"}},
	}
	sender := &fakeSender{}
	d := NewDispatcher(dir, sender)

	d.BroadcastClusterUpdate(&models.Cluster{
		ID:     "cluster-1",
		Center: models.Location{Latitude: 37.7749, Longitude: -122.4194},
	})

	if len(sender.types) != 1 || sender.types[0] != websocket.MessageTypeClusterUpdate {
		t.Errorf("types = %v, want [%s]", sender.types, websocket.MessageTypeClusterUpdate)
	}
}
