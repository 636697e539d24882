// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

// Package spatial implements a small in-memory R-tree over 2-D points and
// rectangles in degree space. The clustering engine uses it to turn repeated
// "find events near X" scans into near-logarithmic lookups.
//
// The index is not safe for concurrent use; each clustering pass builds and
// owns its own instance.
package spatial
