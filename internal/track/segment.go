// Package track splits raw ground-track point sequences into segments
// that can be rendered as polylines without crossing the antimeridian.
//
// Naively connecting consecutive samples across the ±180° longitude seam
// draws a spurious line across the whole globe. Splitting the track at
// every |Δlon| > 180° jump preserves visual correctness without having
// to unwrap longitudes.
package track

import (
	"math"

	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/geo"
)

// Segment is a maximal contiguous run of valid track points in which no
// consecutive pair jumps more than 180° in longitude. A segment always
// holds at least 2 points: a polyline needs 2 vertices.
type Segment struct {
	Points []geo.Point
}

// Split partitions points into renderable segments.
//
// Invalid samples (out-of-range or non-finite coordinates) are dropped
// and do not break continuity bookkeeping beyond being absent. Segments
// that end up with fewer than 2 points are discarded. Empty or
// all-invalid input yields no segments.
func Split(points []geo.Point) []Segment {
	var segments []Segment
	var current []geo.Point

	flush := func() {
		if len(current) >= 2 {
			segments = append(segments, Segment{Points: current})
		}
		current = nil
	}

	havePrev := false
	var prevLon float64

	for _, p := range points {
		if !p.Valid() {
			continue
		}
		if havePrev && math.Abs(p.Lon-prevLon) > 180 {
			flush()
		}
		current = append(current, p)
		prevLon = p.Lon
		havePrev = true
	}
	flush()

	return segments
}
