package track

import (
	"math"
	"math/rand"
	"testing"

	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/geo"
)

func pts(lonLat ...float64) []geo.Point {
	if len(lonLat)%2 != 0 {
		panic("pts requires lat/lon pairs")
	}
	out := make([]geo.Point, 0, len(lonLat)/2)
	for i := 0; i < len(lonLat); i += 2 {
		out = append(out, geo.Point{Lat: lonLat[i], Lon: lonLat[i+1]})
	}
	return out
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		points   []geo.Point
		wantLens []int
	}{
		{
			name:     "empty input",
			points:   nil,
			wantLens: nil,
		},
		{
			name:     "single point dropped",
			points:   pts(0, 10),
			wantLens: nil,
		},
		{
			// Both halves of the seam crossing are single points, so
			// neither survives the 2-point minimum.
			name:     "dateline pair yields nothing",
			points:   pts(0, 179, 0, -179),
			wantLens: nil,
		},
		{
			name:     "contiguous run stays whole",
			points:   pts(0, 10, 0, 20, 0, 30),
			wantLens: []int{3},
		},
		{
			name:     "seam crossing splits into two runs",
			points:   pts(0, 170, 0, 179, 0, -179, 0, -170),
			wantLens: []int{2, 2},
		},
		{
			name:     "all invalid",
			points:   pts(91, 0, -91, 0, 0, 200),
			wantLens: nil,
		},
		{
			// The invalid point vanishes; its neighbors remain contiguous.
			name: "invalid point does not break continuity",
			points: []geo.Point{
				{Lat: 0, Lon: 10},
				{Lat: math.NaN(), Lon: 15},
				{Lat: 0, Lon: 20},
				{Lat: 0, Lon: 30},
			},
			wantLens: []int{3},
		},
		{
			name:     "delta of exactly 180 does not split",
			points:   pts(0, -90, 0, 90, 0, 95),
			wantLens: []int{3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.points)
			if len(got) != len(tt.wantLens) {
				t.Fatalf("got %d segments, want %d", len(got), len(tt.wantLens))
			}
			for i, s := range got {
				if len(s.Points) != tt.wantLens[i] {
					t.Errorf("segment %d: got %d points, want %d", i, len(s.Points), tt.wantLens[i])
				}
			}
		})
	}
}

// TestSplitProperties checks the two structural invariants over random
// input: output preserves the order of surviving points, and no segment
// contains an adjacent pair with |Δlon| > 180°.
func TestSplitProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 200; trial++ {
		n := rng.Intn(60)
		points := make([]geo.Point, n)
		for i := range points {
			points[i] = geo.Point{
				Lat: rng.Float64()*180 - 90,
				Lon: rng.Float64()*360 - 180,
			}
			if rng.Intn(10) == 0 {
				points[i].Lon = 500 // invalid, must be filtered
			}
		}

		var valid []geo.Point
		for _, p := range points {
			if p.Valid() {
				valid = append(valid, p)
			}
		}

		var flat []geo.Point
		for _, s := range Split(points) {
			if len(s.Points) < 2 {
				t.Fatalf("trial %d: segment shorter than 2 points", trial)
			}
			for i := 1; i < len(s.Points); i++ {
				if math.Abs(s.Points[i].Lon-s.Points[i-1].Lon) > 180 {
					t.Fatalf("trial %d: segment crosses the seam", trial)
				}
			}
			flat = append(flat, s.Points...)
		}

		// Every emitted point must appear in the valid sequence, in order.
		j := 0
		for _, p := range flat {
			for j < len(valid) && valid[j] != p {
				j++
			}
			if j == len(valid) {
				t.Fatalf("trial %d: output not a subsequence of valid input", trial)
			}
			j++
		}
	}
}
