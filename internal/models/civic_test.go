// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

package models

import "testing"

func TestSeverity_Rank(t *testing.T) {
	tests := []struct {
		severity Severity
		want     int
	}{
		{SeverityLow, 1},
		{SeverityMedium, 2},
		{SeverityHigh, 3},
		{SeverityCritical, 4},
		{Severity("UNKNOWN"), 0},
		{Severity(""), 0},
		{Severity("low"), 0}, // case sensitive
	}

	for _, tt := range tests {
		if got := tt.severity.Rank(); got != tt.want {
			t.Errorf("Severity(%q).Rank() = %d, want %d", tt.severity, got, tt.want)
		}
	}
}

func TestSeverity_Valid(t *testing.T) {
	for _, s := range []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical} {
		if !s.Valid() {
			t.Errorf("Severity(%q).Valid() = false", s)
		}
	}
	for _, s := range []Severity{"", "SEVERE", "medium"} {
		if s.Valid() {
			t.Errorf("Severity(%q).Valid() = true", s)
		}
	}
}

func TestMaxSeverity(t *testing.T) {
	tests := []struct {
		a, b, want Severity
	}{
		{SeverityLow, SeverityHigh, SeverityHigh},
		{SeverityCritical, SeverityMedium, SeverityCritical},
		{SeverityMedium, SeverityMedium, SeverityMedium},
		{SeverityLow, Severity("BOGUS"), SeverityLow}, // unknown never wins
	}

	for _, tt := range tests {
		if got := MaxSeverity(tt.a, tt.b); got != tt.want {
			t.Errorf("MaxSeverity(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestLocation_Validate(t *testing.T) {
	tests := []struct {
		name    string
		loc     Location
		wantErr bool
	}{
		{"valid", Location{Latitude: 37.7749, Longitude: -122.4194}, false},
		{"boundary north pole", Location{Latitude: 90, Longitude: 0}, false},
		{"boundary antimeridian", Location{Latitude: 0, Longitude: -180}, false},
		{"latitude too high", Location{Latitude: 90.1, Longitude: 0}, true},
		{"longitude too low", Location{Latitude: 0, Longitude: -180.1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.loc.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCoordinates_Valid(t *testing.T) {
	tests := []struct {
		name   string
		coords Coordinates
		want   bool
	}{
		{"valid", Coordinates{Latitude: 37.7749, Longitude: -122.4194}, true},
		{"boundary poles", Coordinates{Latitude: -90, Longitude: 180}, true},
		{"latitude too high", Coordinates{Latitude: 999, Longitude: 0}, false},
		{"latitude too low", Coordinates{Latitude: -90.1, Longitude: 0}, false},
		{"longitude too high", Coordinates{Latitude: 0, Longitude: 180.1}, false},
		{"longitude too low", Coordinates{Latitude: 0, Longitude: -200}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.coords.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCluster_EventIDs(t *testing.T) {
	c := &Cluster{Events: []Event{{ID: "b"}, {ID: "a"}, {ID: "c"}}}
	got := c.EventIDs()
	want := []string{"b", "a", "c"} // cluster order preserved
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("EventIDs() = %v, want %v", got, want)
			break
		}
	}

	empty := &Cluster{}
	if ids := empty.EventIDs(); len(ids) != 0 {
		t.Errorf("empty cluster EventIDs() = %v", ids)
	}
}
