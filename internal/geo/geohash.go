// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

package geo

import (
	"errors"
	"fmt"
	"strings"
)

// base32 is the geohash alphabet. 'a', 'i', 'l', and 'o' are excluded to
// avoid confusion with digits.
const base32 = "0123456789bcdefghjkmnpqrstuvwxyz"

// MaxGeohashPrecision is the longest supported geohash (sub-centimeter cells).
const MaxGeohashPrecision = 12

// DefaultGeohashPrecision gives ~19 m cells, fine enough for street-level
// bucketing of civic reports.
const DefaultGeohashPrecision = 8

var (
	// ErrLatitudeRange is returned when a latitude is outside [-90, 90].
	ErrLatitudeRange = errors.New("geo: latitude out of range [-90, 90]")

	// ErrLongitudeRange is returned when a longitude is outside [-180, 180].
	ErrLongitudeRange = errors.New("geo: longitude out of range [-180, 180]")

	// ErrPrecisionRange is returned when a geohash precision is outside [1, 12].
	ErrPrecisionRange = errors.New("geo: precision out of range [1, 12]")

	// ErrEmptyGeohash is returned when decoding an empty string.
	ErrEmptyGeohash = errors.New("geo: empty geohash")
)

// base32Index maps geohash characters back to their 5-bit values.
var base32Index = func() map[byte]int {
	m := make(map[byte]int, len(base32))
	for i := 0; i < len(base32); i++ {
		m[base32[i]] = i
	}
	return m
}()

// EncodeGeohash converts a coordinate to a base-32 geohash of the given
// precision (characters, 5 bits each). Out-of-range coordinates and
// precision are rejected, never clamped.
func EncodeGeohash(lat, lon float64, precision int) (string, error) {
	if lat < -90 || lat > 90 {
		return "", fmt.Errorf("%w: %v", ErrLatitudeRange, lat)
	}
	if lon < -180 || lon > 180 {
		return "", fmt.Errorf("%w: %v", ErrLongitudeRange, lon)
	}
	if precision < 1 || precision > MaxGeohashPrecision {
		return "", fmt.Errorf("%w: %d", ErrPrecisionRange, precision)
	}

	minLat, maxLat := -90.0, 90.0
	minLon, maxLon := -180.0, 180.0

	var hash strings.Builder
	hash.Grow(precision)

	// Interleave longitude (even bits) and latitude (odd bits), emitting
	// one base-32 character per 5 bits.
	even := true
	bit := 0
	ch := 0
	for hash.Len() < precision {
		if even {
			mid := (minLon + maxLon) / 2
			if lon >= mid {
				ch |= 1 << (4 - bit)
				minLon = mid
			} else {
				maxLon = mid
			}
		} else {
			mid := (minLat + maxLat) / 2
			if lat >= mid {
				ch |= 1 << (4 - bit)
				minLat = mid
			} else {
				maxLat = mid
			}
		}
		even = !even
		bit++
		if bit == 5 {
			hash.WriteByte(base32[ch])
			bit = 0
			ch = 0
		}
	}

	return hash.String(), nil
}

// DecodedGeohash is the result of decoding a geohash: the cell center and
// the half-width of the cell on each axis.
type DecodedGeohash struct {
	Latitude  float64
	Longitude float64
	LatError  float64
	LonError  float64
}

// DecodeGeohash returns the center of the cell named by hash along with the
// per-axis error bounds. A character outside the base-32 alphabet is an
// error.
func DecodeGeohash(hash string) (DecodedGeohash, error) {
	if hash == "" {
		return DecodedGeohash{}, ErrEmptyGeohash
	}

	minLat, maxLat := -90.0, 90.0
	minLon, maxLon := -180.0, 180.0

	even := true
	for i := 0; i < len(hash); i++ {
		val, ok := base32Index[hash[i]]
		if !ok {
			return DecodedGeohash{}, fmt.Errorf("geo: invalid geohash character %q at index %d", hash[i], i)
		}
		for bit := 4; bit >= 0; bit-- {
			set := val&(1<<bit) != 0
			if even {
				mid := (minLon + maxLon) / 2
				if set {
					minLon = mid
				} else {
					maxLon = mid
				}
			} else {
				mid := (minLat + maxLat) / 2
				if set {
					minLat = mid
				} else {
					maxLat = mid
				}
			}
			even = !even
		}
	}

	return DecodedGeohash{
		Latitude:  (minLat + maxLat) / 2,
		Longitude: (minLon + maxLon) / 2,
		LatError:  (maxLat - minLat) / 2,
		LonError:  (maxLon - minLon) / 2,
	}, nil
}
