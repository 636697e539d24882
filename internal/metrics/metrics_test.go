// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordClusteringPass(t *testing.T) {
	beforeClustered := testutil.ToFloat64(ClusteringEventsTotal.WithLabelValues("clustered"))
	beforeOutlier := testutil.ToFloat64(ClusteringEventsTotal.WithLabelValues("outlier"))
	beforeClusters := testutil.ToFloat64(ClustersProduced)

	RecordClusteringPass(7, 2, 3, 50*time.Millisecond)

	if got := testutil.ToFloat64(ClusteringEventsTotal.WithLabelValues("clustered")); got != beforeClustered+7 {
		t.Errorf("clustered counter = %v, want %v", got, beforeClustered+7)
	}
	if got := testutil.ToFloat64(ClusteringEventsTotal.WithLabelValues("outlier")); got != beforeOutlier+2 {
		t.Errorf("outlier counter = %v, want %v", got, beforeOutlier+2)
	}
	if got := testutil.ToFloat64(ClustersProduced); got != beforeClusters+3 {
		t.Errorf("clusters counter = %v, want %v", got, beforeClusters+3)
	}
}

func TestSetRoomStats(t *testing.T) {
	SetRoomStats(4, 11)

	if got := testutil.ToFloat64(RoomCount); got != 4 {
		t.Errorf("RoomCount = %v, want 4", got)
	}
	if got := testutil.ToFloat64(RoomMembers); got != 11 {
		t.Errorf("RoomMembers = %v, want 11", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	base := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != base+1 {
		t.Errorf("after start: gauge = %v, want %v", got, base+1)
	}

	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != base {
		t.Errorf("after finish: gauge = %v, want %v", got, base)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/api/v1/intelligence/process", "200"))

	RecordAPIRequest("POST", "/api/v1/intelligence/process", "200", 12*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/api/v1/intelligence/process", "200"))
	if after != before+1 {
		t.Errorf("request counter = %v, want %v", after, before+1)
	}
}

func TestRecordSynthesisFallbackLabels(t *testing.T) {
	// Both label values must be usable without a vector cardinality panic.
	RecordSynthesis(5*time.Millisecond, false)
	RecordSynthesis(30*time.Millisecond, true)

	SynthesisFallbacks.WithLabelValues("error").Inc()
	if got := testutil.ToFloat64(SynthesisFallbacks.WithLabelValues("error")); got < 1 {
		t.Errorf("fallback counter = %v, want >= 1", got)
	}
}
