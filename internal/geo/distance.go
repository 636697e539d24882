// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used for haversine distance.
const EarthRadiusMeters = 6_371_000.0

// Distance returns the great-circle distance in meters between two points
// using the haversine formula. It is symmetric and Distance(p, p) == 0.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// BoundingBox is an axis-aligned box in degree space.
type BoundingBox struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// Contains reports whether the point lies inside the box, edges included.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat &&
		lon >= b.MinLon && lon <= b.MaxLon
}

// BoundingBoxForRadius returns the degree-space square [center +- radius].
// Degrees are not isotropic, so the box is an approximation; it is always a
// superset of the true radius circle at the latitudes we care about and is
// only used as a prefilter before an exact haversine check.
func BoundingBoxForRadius(lat, lon, radiusMeters float64) BoundingBox {
	// 1 degree of latitude is ~111.32 km everywhere; longitude degrees
	// shrink with cos(latitude).
	latDelta := radiusMeters / 111_320.0
	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < 0.01 {
		cosLat = 0.01 // near the poles every longitude is close
	}
	lonDelta := radiusMeters / (111_320.0 * cosLat)

	return BoundingBox{
		MinLat: lat - latDelta,
		MinLon: lon - lonDelta,
		MaxLat: lat + latDelta,
		MaxLon: lon + lonDelta,
	}
}
