// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

package rooms

import (
	"sync"
	"time"

	"github.com/civic-mind/civicmesh/internal/geo"
	"github.com/civic-mind/civicmesh/internal/logging"
	"github.com/civic-mind/civicmesh/internal/metrics"
	"github.com/civic-mind/civicmesh/internal/models"
)

// DefaultProximityRadiusMeters is how close a room member must be to an
// alert location for the room to match by proximity.
const DefaultProximityRadiusMeters = 10_000.0

// roomIDPrefix namespaces room ids by their region label.
const roomIDPrefix = "region:"

// RoomID returns the room id for a region label.
func RoomID(region string) string { return roomIDPrefix + region }

// room is one region-labeled group of subscriptions. Bounds cover every
// member that ever joined with coordinates; they expand on join and are
// never shrunk on departure (accepted staleness).
type room struct {
	id        string
	region    string
	members   map[string]models.Subscription // keyed by connection id
	createdAt time.Time
	bounds    *geo.BoundingBox
}

// Directory is the subscriber directory. It must be created with
// NewDirectory.
type Directory struct {
	mu              sync.RWMutex
	rooms           map[string]*room
	connectionRooms map[string]map[string]struct{} // connection id -> room ids
	proximityRadius float64
	now             func() time.Time
}

// Option configures a Directory.
type Option func(*Directory)

// WithProximityRadius overrides the member-proximity match radius in meters.
func WithProximityRadius(meters float64) Option {
	return func(d *Directory) { d.proximityRadius = meters }
}

// WithClock overrides the directory's time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(d *Directory) { d.now = now }
}

// NewDirectory creates an empty directory.
func NewDirectory(opts ...Option) *Directory {
	d := &Directory{
		rooms:           make(map[string]*room),
		connectionRooms: make(map[string]map[string]struct{}),
		proximityRadius: DefaultProximityRadiusMeters,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Subscribe idempotently upserts the connection into the room for region,
// creating the room on first subscription. When coordinates are given the
// room's bounding box expands to include them (initialized to the single
// point on the room's first coordinate). Out-of-range coordinates are
// dropped so they can never poison the room's bounds; the membership
// itself still stands.
func (d *Directory) Subscribe(connectionID, region, userID string, coords *models.Coordinates) {
	if coords != nil && !coords.Valid() {
		logging.Warn().
			Str("connection", connectionID).
			Str("region", region).
			Float64("latitude", coords.Latitude).
			Float64("longitude", coords.Longitude).
			Msg("dropping out-of-range subscription coordinates")
		coords = nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	roomID := RoomID(region)
	rm, ok := d.rooms[roomID]
	if !ok {
		rm = &room{
			id:        roomID,
			region:    region,
			members:   make(map[string]models.Subscription),
			createdAt: d.now(),
		}
		d.rooms[roomID] = rm
		logging.Info().Str("room", roomID).Msg("room created")
	}

	rm.members[connectionID] = models.Subscription{
		ConnectionID: connectionID,
		UserID:       userID,
		Region:       region,
		Coordinates:  coords,
		JoinedAt:     d.now(),
	}

	set, ok := d.connectionRooms[connectionID]
	if !ok {
		set = make(map[string]struct{})
		d.connectionRooms[connectionID] = set
	}
	set[roomID] = struct{}{}

	if coords != nil {
		if rm.bounds == nil {
			rm.bounds = &geo.BoundingBox{
				MinLat: coords.Latitude, MaxLat: coords.Latitude,
				MinLon: coords.Longitude, MaxLon: coords.Longitude,
			}
		} else {
			rm.bounds.MinLat = min(rm.bounds.MinLat, coords.Latitude)
			rm.bounds.MaxLat = max(rm.bounds.MaxLat, coords.Latitude)
			rm.bounds.MinLon = min(rm.bounds.MinLon, coords.Longitude)
			rm.bounds.MaxLon = max(rm.bounds.MaxLon, coords.Longitude)
		}
	}

	d.publishStatsLocked()
	logging.Debug().
		Str("connection", connectionID).
		Str("room", roomID).
		Int("members", len(rm.members)).
		Msg("connection subscribed")
}

// Unsubscribe removes the connection from the one room named by region.
// Unknown connections and regions are no-ops.
func (d *Directory) Unsubscribe(connectionID, region string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.removeLocked(connectionID, RoomID(region))
	d.publishStatsLocked()
}

// UnsubscribeAll removes the connection from every room it belongs to,
// deleting any room left empty. Unknown connections are a no-op.
func (d *Directory) UnsubscribeAll(connectionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	set, ok := d.connectionRooms[connectionID]
	if !ok {
		return
	}
	for roomID := range set {
		d.removeLocked(connectionID, roomID)
	}
	d.publishStatsLocked()
	logging.Debug().Str("connection", connectionID).Msg("connection unsubscribed from all rooms")
}

// removeLocked drops the membership and cleans up empty rooms and empty
// reverse-index entries. Caller holds d.mu.
func (d *Directory) removeLocked(connectionID, roomID string) {
	rm, ok := d.rooms[roomID]
	if ok {
		delete(rm.members, connectionID)
		if len(rm.members) == 0 {
			delete(d.rooms, roomID)
			logging.Debug().Str("room", roomID).Msg("empty room deleted")
		}
	}
	if set, ok := d.connectionRooms[connectionID]; ok {
		delete(set, roomID)
		if len(set) == 0 {
			delete(d.connectionRooms, connectionID)
		}
	}
}

// RoomsForLocation returns the ids of every room that should receive a
// payload at the given location. A room matches when the location's region
// equals the room's region label, when the location falls inside the room's
// bounding box, or when any member with coordinates is within the proximity
// radius. Each room is reported at most once.
func (d *Directory) RoomsForLocation(loc models.Location) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var matched []string
	for roomID, rm := range d.rooms {
		switch {
		case loc.Region != "" && rm.region == loc.Region:
			matched = append(matched, roomID)
		case rm.bounds != nil && rm.bounds.Contains(loc.Latitude, loc.Longitude):
			matched = append(matched, roomID)
		case d.hasNearbyMemberLocked(rm, loc):
			matched = append(matched, roomID)
		}
	}

	logging.Debug().
		Int("rooms", len(matched)).
		Float64("lat", loc.Latitude).
		Float64("lon", loc.Longitude).
		Msg("resolved rooms for location")
	return matched
}

// hasNearbyMemberLocked reports whether any member with coordinates is
// within the proximity radius of loc. Caller holds d.mu.
func (d *Directory) hasNearbyMemberLocked(rm *room, loc models.Location) bool {
	for _, member := range rm.members {
		if member.Coordinates == nil {
			continue
		}
		dist := geo.Distance(loc.Latitude, loc.Longitude,
			member.Coordinates.Latitude, member.Coordinates.Longitude)
		if dist <= d.proximityRadius {
			return true
		}
	}
	return false
}

// Members returns the connection ids currently in the room, or nil when the
// room does not exist.
func (d *Directory) Members(roomID string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rm, ok := d.rooms[roomID]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(rm.members))
	for id := range rm.members {
		ids = append(ids, id)
	}
	return ids
}

// RoomDetail describes one room for the stats endpoint.
type RoomDetail struct {
	RoomID      string `json:"roomId"`
	Region      string `json:"region"`
	MemberCount int    `json:"memberCount"`
	AgeMinutes  int    `json:"ageMinutes"`
}

// Stats summarizes the directory.
type Stats struct {
	TotalRooms   int          `json:"totalRooms"`
	TotalMembers int          `json:"totalMembers"`
	Rooms        []RoomDetail `json:"roomDetails"`
}

// Stats returns a snapshot of the directory.
func (d *Directory) Stats() Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()

	now := d.now()
	stats := Stats{Rooms: make([]RoomDetail, 0, len(d.rooms))}
	for _, rm := range d.rooms {
		stats.TotalRooms++
		stats.TotalMembers += len(rm.members)
		stats.Rooms = append(stats.Rooms, RoomDetail{
			RoomID:      rm.id,
			Region:      rm.region,
			MemberCount: len(rm.members),
			AgeMinutes:  int(now.Sub(rm.createdAt).Minutes()),
		})
	}
	return stats
}

// publishStatsLocked refreshes the room gauges. Caller holds d.mu.
func (d *Directory) publishStatsLocked() {
	members := 0
	for _, rm := range d.rooms {
		members += len(rm.members)
	}
	metrics.SetRoomStats(len(d.rooms), members)
}
