package beam

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/geo"
)

const sphereRadius = 100.0

func buildTestRig(t *testing.T, lat, lon float64) *Rig {
	t.Helper()
	rng := rand.New(rand.NewSource(99))
	return Build(geo.Point{Lat: lat, Lon: lon}, sphereRadius, DefaultConfig(), rng)
}

func TestBuildGeometry(t *testing.T) {
	rig := buildTestRig(t, 30, -60)
	cfg := DefaultConfig()

	assert.InDelta(t, sphereRadius*cfg.SatAltFactor, r3.Norm(rig.SatellitePos), 1e-9)
	assert.InDelta(t, sphereRadius*cfg.GroundAltFactor, r3.Norm(rig.GroundPos), 1e-9)

	// Beam height is the radial gap between the two altitudes.
	wantHeight := sphereRadius * (cfg.SatAltFactor - cfg.GroundAltFactor)
	assert.InDelta(t, wantHeight, rig.Height, 1e-9)

	// Footprint radii are fractions of the sphere radius, independent of
	// the beam height.
	assert.InDelta(t, sphereRadius*cfg.FootprintFrac, rig.Ring.OuterRadius, 1e-9)
	assert.InDelta(t, sphereRadius*cfg.FootprintFrac*cfg.InnerFrac, rig.Ring.InnerRadius, 1e-9)

	require.Equal(t, 4, rig.Root.Len())
}

func TestConeOrientation(t *testing.T) {
	rig := buildTestRig(t, -45, 120)

	// The cone's +Y axis (its wide end) must map onto the outward surface
	// direction, so the taper widens toward the satellite.
	axis := rig.Cone.Rotation.Rotate(r3.Vec{Y: 1})
	want := r3.Unit(rig.SatellitePos)
	assert.InDelta(t, 0, r3.Norm(r3.Sub(axis, want)), 1e-9)

	// In world space the wide end sits at the satellite and the narrow
	// end at the ground.
	wide := r3.Add(rig.Cone.Position, rig.Cone.Rotation.Rotate(r3.Vec{Y: rig.Height / 2}))
	narrow := r3.Add(rig.Cone.Position, rig.Cone.Rotation.Rotate(r3.Vec{Y: -rig.Height / 2}))
	assert.InDelta(t, 0, r3.Norm(r3.Sub(wide, rig.SatellitePos)), 1e-9)
	assert.InDelta(t, 0, r3.Norm(r3.Sub(narrow, rig.GroundPos)), 1e-9)
}

func TestParticlesStayAboveSurface(t *testing.T) {
	rig := buildTestRig(t, 62, -140)

	// Particle world position is the field origin plus the rotated local
	// offset; every particle must land outside the sphere, never inside
	// the globe.
	for i, p := range rig.Particles.Particles {
		world := r3.Add(rig.Particles.Position, rig.Particles.Rotation.Rotate(r3.Vec{X: p.X, Y: p.Y, Z: p.Z}))
		require.Greaterf(t, r3.Norm(world), sphereRadius,
			"particle %d inside the globe", i)
	}
}

func TestRingLiesTangentToSphere(t *testing.T) {
	rig := buildTestRig(t, 10, 10)

	normal := rig.Ring.Rotation.Rotate(r3.Vec{Y: 1})
	want := r3.Unit(rig.GroundPos)
	assert.InDelta(t, 0, r3.Norm(r3.Sub(normal, want)), 1e-9)
}

func TestParticlesSeededInsideBeam(t *testing.T) {
	rig := buildTestRig(t, 0, 0)
	cfg := DefaultConfig()

	require.Len(t, rig.Particles.Particles, cfg.ParticleCount)

	for i, p := range rig.Particles.Particles {
		require.GreaterOrEqualf(t, p.Y, 0.0, "particle %d below the beam", i)
		require.LessOrEqualf(t, p.Y, rig.Height, "particle %d above the beam", i)

		radial := math.Hypot(p.X, p.Z)
		require.LessOrEqualf(t, radial, rig.CrossSectionRadius(p.Y)+1e-9,
			"particle %d outside the cross-section at its height", i)

		require.GreaterOrEqual(t, p.Speed, cfg.FallSpeedMin)
		require.LessOrEqual(t, p.Speed, cfg.FallSpeedMax)
	}
}

func TestCrossSectionRadius(t *testing.T) {
	rig := buildTestRig(t, 0, 0)

	assert.InDelta(t, rig.TipRadius, rig.CrossSectionRadius(0), 1e-12)
	assert.InDelta(t, rig.BaseRadius, rig.CrossSectionRadius(rig.Height), 1e-12)

	mid := rig.CrossSectionRadius(rig.Height / 2)
	assert.InDelta(t, (rig.TipRadius+rig.BaseRadius)/2, mid, 1e-12)

	// Out-of-range heights clamp instead of extrapolating.
	assert.InDelta(t, rig.TipRadius, rig.CrossSectionRadius(-5), 1e-12)
	assert.InDelta(t, rig.BaseRadius, rig.CrossSectionRadius(rig.Height*2), 1e-12)
}

func TestReseed(t *testing.T) {
	rig := buildTestRig(t, 0, 0)
	rng := rand.New(rand.NewSource(5))

	p := &rig.Particles.Particles[0]
	p.Y = -0.3
	speed := p.Speed

	rig.Reseed(p, rng)

	assert.Equal(t, rig.Height, p.Y)
	assert.LessOrEqual(t, math.Hypot(p.X, p.Z), rig.BaseRadius+1e-9)
	assert.Equal(t, speed, p.Speed, "reseeding must not change the fall speed")
}

func TestDisposeIsIdempotent(t *testing.T) {
	rig := buildTestRig(t, 0, 0)

	require.False(t, rig.Disposed())
	rig.Dispose()
	require.True(t, rig.Disposed())
	require.Equal(t, 0, rig.Root.Len())

	rig.Dispose() // second call is a no-op
	require.True(t, rig.Disposed())
}
