// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

// Package geo provides the pure geographic primitives used throughout the
// pipeline: great-circle (haversine) distance, base-32 geohash encoding and
// decoding, and degree-space bounding boxes for radius prefilters.
//
// Everything in this package is a pure function over coordinates; there is
// no state and no I/O.
package geo
