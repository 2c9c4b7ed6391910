// Package host provides the rendering surface the visualization engine
// composes into: a scene-graph root, an orbit camera with relative
// rotate/zoom controls, a per-frame scheduling primitive, and a texture
// loader.
//
// The surface is constructed asynchronously: Surface accessors return
// usable objects only once Ready reports true. The engine must tolerate
// an indeterminate delay between construction and readiness.
package host

import (
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/scene"
)

// Controls is the orbit-camera control surface: relative rotation and
// zoom around a target point.
type Controls interface {
	Rotate(dAzimuthDeg, dElevationDeg float64)
	Zoom(dDistance float64)
	Distance() float64
	Target() r3.Vec
	SetTarget(v r3.Vec)
}

// Surface is the host scene contract consumed by the engine. All methods
// except Ready and Latest must be called from the frame loop goroutine.
type Surface interface {
	// Ready reports whether the scene graph and camera exist yet.
	Ready() bool

	// SceneRoot returns the mutable scene-graph root. Nil until Ready.
	SceneRoot() *scene.Group

	// Controls returns the camera controls. Nil until Ready.
	Controls() Controls

	// GlobeRadius returns the rendered globe's sphere radius.
	GlobeRadius() float64

	// FlyTo re-centers the point of view on a geographic position over
	// the given transition duration.
	FlyTo(lat, lon, altitude float64, duration time.Duration)

	// OnFrame schedules fn on every display-frame boundary, after the
	// frame's layout step, until the returned cancel runs. Callbacks
	// execute sequentially in registration order.
	OnFrame(fn func(dt float64)) (cancel func())

	// LoadTexture resolves a texture asset by name, returning the
	// reference renderers use.
	LoadTexture(name string) (string, error)
}
