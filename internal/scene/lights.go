package scene

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// AmbientLight is the scene-wide fill light.
type AmbientLight struct {
	Name      string
	Color     string
	Intensity float64
}

// ObjectName implements Object.
func (l *AmbientLight) ObjectName() string { return l.Name }

// DirectionalLight is the sun light: parallel rays from Direction toward
// the origin.
type DirectionalLight struct {
	Name      string
	Direction r3.Vec // unit vector from origin toward the light
	Color     string
	Intensity float64
}

// ObjectName implements Object.
func (l *DirectionalLight) ObjectName() string { return l.Name }

// SpotLight illuminates the beam footprint from the satellite position.
type SpotLight struct {
	Name      string
	Position  r3.Vec
	Target    r3.Vec
	Color     string
	Intensity float64
	AngleRad  float64
}

// ObjectName implements Object.
func (l *SpotLight) ObjectName() string { return l.Name }

// LightingRig bundles the two process-wide lights. Exactly one rig
// exists for the scene's lifetime: it is created once during scene
// initialization and mutated in place afterwards, never recreated.
type LightingRig struct {
	Ambient *AmbientLight
	Sun     *DirectionalLight
}

// NewLightingRig creates the rig with neutral defaults.
func NewLightingRig() *LightingRig {
	return &LightingRig{
		Ambient: &AmbientLight{Name: "ambient", Color: "#ffffff", Intensity: 0.35},
		Sun:     &DirectionalLight{Name: "sun", Direction: r3.Vec{X: 1}, Color: "#fff4e0", Intensity: 1.2},
	}
}

// SetSunDirection points the directional light. dir must be non-zero;
// it is normalized in place.
func (r *LightingRig) SetSunDirection(dir r3.Vec) {
	if r3.Norm(dir) == 0 {
		return
	}
	r.Sun.Direction = r3.Unit(dir)
}
