// Package ephemeris computes an approximate sun direction for scene
// lighting.
//
// The model is deliberately low precision: declination from a single-term
// sinusoid and sub-solar longitude from the UTC hour angle. It drives
// lighting aesthetics only, never navigation, so no correction terms
// (equation of time, obliquity drift) are applied.
package ephemeris

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/geo"
)

// MaxDeclinationDeg is the obliquity bound of the approximation.
const MaxDeclinationDeg = 23.44

// Declination returns the approximate solar declination in degrees for
// the given instant: 23.44° · sin(2π/365 · (dayOfYear − 81)).
func Declination(t time.Time) float64 {
	doy := float64(t.UTC().YearDay())
	return MaxDeclinationDeg * math.Sin(2*math.Pi/365*(doy-81))
}

// SubsolarLon returns the approximate sub-solar longitude in degrees:
// (12 − UTC decimal hours) · 15°, wrapped into [-180, 180).
func SubsolarLon(t time.Time) float64 {
	t = t.UTC()
	hours := float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
	return geo.NormalizeLon((12 - hours) * 15)
}

// SunDirection returns a unit vector pointing from the globe center toward
// the sun, in the scene's Cartesian convention.
func SunDirection(t time.Time) r3.Vec {
	v := geo.ToCartesian(Declination(t), SubsolarLon(t), 1)
	return r3.Unit(v)
}
