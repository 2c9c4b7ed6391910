// Command diag fetches one ground track from the upstream orbit API and
// prints what the engine would compose from it: segmentation, current
// position, beam geometry, and the sun direction. Useful for checking an
// upstream deployment without starting the full server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/beam"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/ephemeris"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/orbit"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/track"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	baseURL := os.Getenv("SPACEPI_ORBIT_BASE_URL")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8000"
	}
	sat := os.Getenv("SPACEPI_SAT")
	if sat == "" {
		sat = "Polytech_Universe-3"
	}

	client := orbit.NewClient(baseURL, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	snap, err := client.FetchTrack(ctx, orbit.Request{
		Satellite: sat,
		Window:    180 * time.Minute,
		Step:      20 * time.Second,
	})
	if err != nil {
		fmt.Println("ERROR fetching track:", err)
		os.Exit(1)
	}

	fmt.Printf("Track for %s: %d points over %d minutes (step %ds)\n",
		snap.Sat, len(snap.Track), snap.Minutes, snap.StepSec)

	segments := track.Split(snap.Track)
	fmt.Printf("Segments after antimeridian split: %d\n", len(segments))
	for i, seg := range segments {
		first := seg.Points[0]
		last := seg.Points[len(seg.Points)-1]
		fmt.Printf("  segment %d: %d points, lon %.2f .. %.2f\n",
			i, len(seg.Points), first.Lon, last.Lon)
	}

	if snap.Current == nil || !snap.Current.Valid() {
		fmt.Println("No current position; the view would render the track only.")
	} else {
		cur := *snap.Current
		fmt.Printf("Current position: lat %.4f lon %.4f at %v\n", cur.Lat, cur.Lon, cur.Time)

		rig := beam.Build(cur, 100, beam.DefaultConfig(), rand.New(rand.NewSource(1)))
		fmt.Printf("Beam: height %.2f, base radius %.2f, tip radius %.2f, %d particles\n",
			rig.Height, rig.BaseRadius, rig.TipRadius, len(rig.Particles.Particles))
	}

	now := time.Now().UTC()
	sun := ephemeris.SunDirection(now)
	fmt.Printf("Sun at %v: declination %.2f°, subsolar lon %.2f°, direction (%.3f, %.3f, %.3f)\n",
		now.Format(time.RFC3339),
		ephemeris.Declination(now),
		ephemeris.SubsolarLon(now),
		sun.X, sun.Y, sun.Z)
}
