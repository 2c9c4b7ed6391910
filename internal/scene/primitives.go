package scene

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Polyline is a rendered track segment.
type Polyline struct {
	Name   string
	Points []r3.Vec
	Color  string // hex, e.g. "#00ffcc"
	Width  float64
}

// ObjectName implements Object.
func (p *Polyline) ObjectName() string { return p.Name }

// Marker is a billboarded sprite anchored at a world position (the
// satellite icon).
type Marker struct {
	Name     string
	Position r3.Vec
	Texture  string // texture asset name resolved through the host loader
	Size     float64
}

// ObjectName implements Object.
func (m *Marker) ObjectName() string { return m.Name }

// Label is a text annotation anchored at a world position. Labels are
// composed only while the camera is close enough (detail gating).
type Label struct {
	Name     string
	Position r3.Vec
	Text     string
}

// ObjectName implements Object.
func (l *Label) ObjectName() string { return l.Name }

// Cone is the tapered beam volume. The untransformed cone points its
// wide end up the +Y axis; Rotation orients it so the wide end faces the
// satellite and the narrow end touches ground.
type Cone struct {
	Name       string
	Position   r3.Vec // world position of the cone center
	Rotation   r3.Rotation
	Height     float64
	BaseRadius float64 // wide end (satellite side)
	TipRadius  float64 // narrow end (ground side)
	Color      string
	Opacity    float64
	ScanTime   float64 // shader-like scan phase, advanced per frame
}

// ObjectName implements Object.
func (c *Cone) ObjectName() string { return c.Name }

// Ring is the ground footprint annulus, lying tangent to the sphere.
type Ring struct {
	Name        string
	Position    r3.Vec
	Rotation    r3.Rotation // maps the ring's default +Y normal onto the surface normal
	InnerRadius float64
	OuterRadius float64
	Color       string
	Opacity     float64
	Scale       float64
}

// ObjectName implements Object.
func (r *Ring) ObjectName() string { return r.Name }

// Particle is one falling particle inside the beam volume, in the
// cone's local frame: Y is height above the ground end, X/Z span the
// cross-section disk.
type Particle struct {
	X, Y, Z float64
	Speed   float64 // fall speed in local units per second
}

// ParticleField is the beam's particle buffer. The buffer is owned
// exclusively by its BeamRig; only the animation scheduler writes it.
type ParticleField struct {
	Name      string
	Position  r3.Vec      // world position of the field origin (ground end)
	Rotation  r3.Rotation // same orientation as the owning cone
	Particles []Particle
	Color     string
	Size      float64
}

// ObjectName implements Object.
func (f *ParticleField) ObjectName() string { return f.Name }
