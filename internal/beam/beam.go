// Package beam builds the 3D primitives that visualize the satellite's
// downward sensor beam: a tapered cone volume, a ground footprint ring,
// a particle field falling through the volume, and a spotlight.
package beam

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/geo"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/scene"
)

// Config holds the beam's visual constants. The two observed styles of
// this overlay differ only in these knobs, so they are configuration
// with documented defaults rather than behavior.
type Config struct {
	// GroundAltFactor and SatAltFactor place the beam ends at fixed
	// radii relative to the sphere, not at real orbital altitude.
	GroundAltFactor float64 `yaml:"ground_alt_factor"` // default 1.01
	SatAltFactor    float64 `yaml:"sat_alt_factor"`    // default 1.11

	// FootprintFrac is the footprint outer radius as a fraction of the
	// sphere radius, independent of beam height so the footprint stays
	// legible at any camera distance. InnerFrac is the blind-spot inner
	// radius as a fraction of the outer.
	FootprintFrac float64 `yaml:"footprint_frac"` // default 0.23
	InnerFrac     float64 `yaml:"inner_frac"`     // default 0.7

	// TipFrac is the cone cross-section at the ground end as a fraction
	// of the footprint radius.
	TipFrac float64 `yaml:"tip_frac"` // default 0.15

	ParticleCount int     `yaml:"particle_count"` // default 500
	FallSpeedMin  float64 `yaml:"fall_speed_min"` // local units/s, default 0.5
	FallSpeedMax  float64 `yaml:"fall_speed_max"` // local units/s, default 2.0

	ConeColor     string  `yaml:"cone_color"`     // default "#35c8ff"
	RingColor     string  `yaml:"ring_color"`     // default "#7fe8ff"
	ParticleColor string  `yaml:"particle_color"` // default "#b7f3ff"
	ConeOpacity   float64 `yaml:"cone_opacity"`   // default 0.25
	RingOpacity   float64 `yaml:"ring_opacity"`   // default 0.55
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		GroundAltFactor: 1.01,
		SatAltFactor:    1.11,
		FootprintFrac:   0.23,
		InnerFrac:       0.7,
		TipFrac:         0.15,
		ParticleCount:   500,
		FallSpeedMin:    0.5,
		FallSpeedMax:    2.0,
		ConeColor:       "#35c8ff",
		RingColor:       "#7fe8ff",
		ParticleColor:   "#b7f3ff",
		ConeOpacity:     0.25,
		RingOpacity:     0.55,
	}
}

// Rig owns the beam primitives for one current position. A Rig belongs
// exclusively to the scene composer; it is destroyed and rebuilt whenever
// the current position changes.
type Rig struct {
	Root      *scene.Group
	Cone      *scene.Cone
	Ring      *scene.Ring
	Particles *scene.ParticleField
	Spot      *scene.SpotLight

	SatellitePos r3.Vec
	GroundPos    r3.Vec
	Height       float64
	BaseRadius   float64 // cross-section at the satellite end
	TipRadius    float64 // cross-section at the ground end

	disposed bool
}

// Build constructs the rig for the given current position.
//
// Precondition: current.Valid() — the caller gates on validity and never
// invokes the builder for an absent or malformed position.
func Build(current geo.Point, sphereRadius float64, cfg Config, rng *rand.Rand) *Rig {
	satPos := geo.ToCartesian(current.Lat, current.Lon, sphereRadius*cfg.SatAltFactor)
	groundPos := geo.ToCartesian(current.Lat, current.Lon, sphereRadius*cfg.GroundAltFactor)

	height := r3.Norm(r3.Sub(satPos, groundPos))
	footprint := sphereRadius * cfg.FootprintFrac
	tip := footprint * cfg.TipFrac

	// The untransformed cone points its wide end up +Y; rotate that axis
	// onto the outward surface direction so the wide end faces the
	// satellite and the narrow end touches ground. The particle field
	// shares the rotation: its local Y runs ground to satellite.
	coneRot := scene.RotationBetween(r3.Vec{Y: 1}, satPos)
	mid := r3.Scale(0.5, r3.Add(satPos, groundPos))

	cone := &scene.Cone{
		Name:       "beam-cone",
		Position:   mid,
		Rotation:   coneRot,
		Height:     height,
		BaseRadius: footprint,
		TipRadius:  tip,
		Color:      cfg.ConeColor,
		Opacity:    cfg.ConeOpacity,
	}

	// The ring's default +Y normal is rotated onto the outward surface
	// normal so the annulus lies tangent to the sphere.
	ring := &scene.Ring{
		Name:        "beam-footprint",
		Position:    groundPos,
		Rotation:    scene.RotationBetween(r3.Vec{Y: 1}, groundPos),
		InnerRadius: footprint * cfg.InnerFrac,
		OuterRadius: footprint,
		Color:       cfg.RingColor,
		Opacity:     cfg.RingOpacity,
		Scale:       1,
	}

	rig := &Rig{
		SatellitePos: satPos,
		GroundPos:    groundPos,
		Height:       height,
		BaseRadius:   footprint,
		TipRadius:    tip,
	}

	particles := make([]scene.Particle, cfg.ParticleCount)
	for i := range particles {
		y := rng.Float64() * height
		x, z := rig.sampleDisk(y, rng)
		particles[i] = scene.Particle{
			X: x, Y: y, Z: z,
			Speed: cfg.FallSpeedMin + rng.Float64()*(cfg.FallSpeedMax-cfg.FallSpeedMin),
		}
	}

	field := &scene.ParticleField{
		Name:      "beam-particles",
		Position:  groundPos,
		Rotation:  coneRot,
		Particles: particles,
		Color:     cfg.ParticleColor,
		Size:      sphereRadius * 0.004,
	}

	spot := &scene.SpotLight{
		Name:      "beam-spot",
		Position:  satPos,
		Target:    groundPos,
		Color:     cfg.RingColor,
		Intensity: 2,
		AngleRad:  math.Atan2(footprint, height),
	}

	root := scene.NewGroup("beam")
	root.Add(cone)
	root.Add(ring)
	root.Add(field)
	root.Add(spot)

	rig.Root = root
	rig.Cone = cone
	rig.Ring = ring
	rig.Particles = field
	rig.Spot = spot
	return rig
}

// CrossSectionRadius returns the cone radius at local height y above the
// ground end, linearly interpolated between the tip and base radii.
func (r *Rig) CrossSectionRadius(y float64) float64 {
	if r.Height == 0 {
		return r.TipRadius
	}
	t := y / r.Height
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return r.TipRadius + (r.BaseRadius-r.TipRadius)*t
}

// sampleDisk returns an area-uniform (x, z) sample within the cone's
// cross-section disk at local height y. sqrt(uniform) keeps the samples
// from clustering at the center.
func (r *Rig) sampleDisk(y float64, rng *rand.Rand) (x, z float64) {
	radius := math.Sqrt(rng.Float64()) * r.CrossSectionRadius(y)
	angle := rng.Float64() * 2 * math.Pi
	return radius * math.Cos(angle), radius * math.Sin(angle)
}

// Reseed wraps one particle back to the top of the beam at a fresh
// cross-section position, keeping its fall speed.
func (r *Rig) Reseed(p *scene.Particle, rng *rand.Rand) {
	p.Y = r.Height
	p.X, p.Z = r.sampleDisk(p.Y, rng)
}

// Dispose detaches all primitives and marks the rig dead. Safe to call
// more than once.
func (r *Rig) Dispose() {
	if r.disposed {
		return
	}
	r.disposed = true
	r.Root.Clear()
}

// Disposed reports whether Dispose has run.
func (r *Rig) Disposed() bool { return r.disposed }
