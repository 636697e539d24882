// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

// Package clustering groups a batch of geolocated events into spatial
// clusters using greedy single-linkage by seed: iterate events in input
// order, gather every unclaimed event within the radius of the current
// seed, and materialize a cluster when the group reaches the minimum size.
//
// The pass is deterministic given input order. An event reachable from two
// seeds is claimed by whichever seed is iterated first, and membership is
// measured seed-to-member, so a member may end up farther than the radius
// from the final centroid.
//
// A clustering pass is a pure computation over its input slice; engines are
// safe to share across goroutines running independent batches.
package clustering
