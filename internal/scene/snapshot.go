package scene

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// ObjectSnapshot is an immutable, JSON-encodable view of one object.
// Snapshots are what the SSE stream ships to viewers; taking one on the
// frame loop decouples readers from the mutable scene graph.
type ObjectSnapshot struct {
	Type     string           `json:"type"`
	Name     string           `json:"name"`
	Position *[3]float64      `json:"p,omitempty"`
	Rotation *[4]float64      `json:"q,omitempty"` // quaternion (w, x, y, z)
	Points   [][3]float64     `json:"pts,omitempty"`
	Color    string           `json:"color,omitempty"`
	Text     string           `json:"text,omitempty"`
	Texture  string           `json:"texture,omitempty"`
	Values   map[string]float64 `json:"v,omitempty"`
	Children []ObjectSnapshot `json:"children,omitempty"`
}

// Snapshot returns a deep, immutable copy of the subtree rooted at g.
func (g *Group) Snapshot() ObjectSnapshot { return g.snap() }

func vecArr(v r3.Vec) *[3]float64 {
	return &[3]float64{v.X, v.Y, v.Z}
}

func rotArr(r r3.Rotation) *[4]float64 {
	q := quat.Number(r)
	return &[4]float64{q.Real, q.Imag, q.Jmag, q.Kmag}
}

func (g *Group) snap() ObjectSnapshot {
	s := ObjectSnapshot{Type: "group", Name: g.Name}
	for _, c := range g.children {
		s.Children = append(s.Children, c.snap())
	}
	return s
}

func (p *Polyline) snap() ObjectSnapshot {
	pts := make([][3]float64, len(p.Points))
	for i, v := range p.Points {
		pts[i] = [3]float64{v.X, v.Y, v.Z}
	}
	return ObjectSnapshot{
		Type: "polyline", Name: p.Name, Points: pts, Color: p.Color,
		Values: map[string]float64{"width": p.Width},
	}
}

func (m *Marker) snap() ObjectSnapshot {
	return ObjectSnapshot{
		Type: "marker", Name: m.Name, Position: vecArr(m.Position),
		Texture: m.Texture,
		Values:  map[string]float64{"size": m.Size},
	}
}

func (l *Label) snap() ObjectSnapshot {
	return ObjectSnapshot{Type: "label", Name: l.Name, Position: vecArr(l.Position), Text: l.Text}
}

func (c *Cone) snap() ObjectSnapshot {
	return ObjectSnapshot{
		Type: "cone", Name: c.Name, Position: vecArr(c.Position), Rotation: rotArr(c.Rotation),
		Color: c.Color,
		Values: map[string]float64{
			"height":      c.Height,
			"base_radius": c.BaseRadius,
			"tip_radius":  c.TipRadius,
			"opacity":     c.Opacity,
			"scan_time":   c.ScanTime,
		},
	}
}

func (r *Ring) snap() ObjectSnapshot {
	return ObjectSnapshot{
		Type: "ring", Name: r.Name, Position: vecArr(r.Position), Rotation: rotArr(r.Rotation),
		Color: r.Color,
		Values: map[string]float64{
			"inner_radius": r.InnerRadius,
			"outer_radius": r.OuterRadius,
			"opacity":      r.Opacity,
			"scale":        r.Scale,
		},
	}
}

func (f *ParticleField) snap() ObjectSnapshot {
	pts := make([][3]float64, len(f.Particles))
	for i, p := range f.Particles {
		pts[i] = [3]float64{p.X, p.Y, p.Z}
	}
	return ObjectSnapshot{
		Type: "particles", Name: f.Name, Position: vecArr(f.Position), Rotation: rotArr(f.Rotation),
		Points: pts, Color: f.Color,
		Values: map[string]float64{"size": f.Size},
	}
}

func (l *AmbientLight) snap() ObjectSnapshot {
	return ObjectSnapshot{
		Type: "ambient_light", Name: l.Name, Color: l.Color,
		Values: map[string]float64{"intensity": l.Intensity},
	}
}

func (l *DirectionalLight) snap() ObjectSnapshot {
	return ObjectSnapshot{
		Type: "directional_light", Name: l.Name, Position: vecArr(l.Direction), Color: l.Color,
		Values: map[string]float64{"intensity": l.Intensity},
	}
}

func (l *SpotLight) snap() ObjectSnapshot {
	s := ObjectSnapshot{
		Type: "spot_light", Name: l.Name, Position: vecArr(l.Position), Color: l.Color,
		Values: map[string]float64{"intensity": l.Intensity, "angle": l.AngleRad},
	}
	s.Points = [][3]float64{{l.Target.X, l.Target.Y, l.Target.Z}}
	return s
}

// Snapshot returns the lighting rig as a pair of object snapshots.
func (r *LightingRig) Snapshot() []ObjectSnapshot {
	return []ObjectSnapshot{r.Ambient.snap(), r.Sun.snap()}
}
