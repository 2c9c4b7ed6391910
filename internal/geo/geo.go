// Package geo provides the geographic↔Cartesian transform used by every
// scene component, plus sample validity filtering.
//
// The transform uses one fixed convention for mapping (lat, lon, radius)
// onto a sphere centered at the origin:
//
//	φ = (90° − lat) in radians  (polar angle)
//	θ = (lon + 180°) in radians (azimuth)
//	x = −sinφ·cosθ·r,  y = cosφ·r,  z = sinφ·sinθ·r
//
// Every caller (track polylines, satellite marker, beam, footprint,
// sun direction) must go through this package so primitives stay aligned.
package geo

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// Deg2Rad converts degrees to radians.
const Deg2Rad = math.Pi / 180.0

// Rad2Deg converts radians to degrees.
const Rad2Deg = 180.0 / math.Pi

// Point is a single ground-track sample. Immutable once received.
type Point struct {
	Lat  float64   `json:"lat"`
	Lon  float64   `json:"lon"`
	Time time.Time `json:"ts_utc"`
}

// Valid reports whether the point carries finite, in-range coordinates.
// Out-of-range or non-finite samples are expected in noisy telemetry and
// are dropped silently by callers, never surfaced as errors.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) {
		return false
	}
	if math.IsNaN(p.Lon) || math.IsInf(p.Lon, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// ToCartesian maps (lat, lon) in degrees onto a sphere of the given radius.
func ToCartesian(lat, lon, radius float64) r3.Vec {
	phi := (90 - lat) * Deg2Rad
	theta := (lon + 180) * Deg2Rad

	return r3.Vec{
		X: -math.Sin(phi) * math.Cos(theta) * radius,
		Y: math.Cos(phi) * radius,
		Z: math.Sin(phi) * math.Sin(theta) * radius,
	}
}

// ToGeographic recovers (lat, lon) in degrees from a Cartesian point
// produced by ToCartesian. Longitude is undefined at the poles and
// returned as 0 there.
func ToGeographic(v r3.Vec) (lat, lon float64) {
	r := r3.Norm(v)
	if r == 0 {
		return 0, 0
	}

	phi := math.Acos(clamp(v.Y/r, -1, 1))
	lat = 90 - phi*Rad2Deg

	if math.Sin(phi) < 1e-12 {
		return lat, 0
	}

	theta := math.Atan2(v.Z, -v.X)
	lon = NormalizeLon(theta*Rad2Deg - 180)
	return lat, lon
}

// NormalizeLon wraps a longitude in degrees into [-180, 180).
func NormalizeLon(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
