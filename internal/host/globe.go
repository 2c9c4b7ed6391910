package host

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/geo"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/metrics"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/scene"
)

// Config holds the host surface configuration.
type Config struct {
	FrameRate     int           // frames per second (default: 30)
	GlobeRadius   float64       // scene units (default: 100)
	StartDistance float64       // initial camera distance (default: 400)
	MinDistance   float64       // zoom-in clamp (default: 120)
	MaxDistance   float64       // zoom-out clamp (default: 1000)
	InitDelay     time.Duration // simulated async construction delay (default: 0)
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		FrameRate:     30,
		GlobeRadius:   100,
		StartDistance: 400,
		MinDistance:   120,
		MaxDistance:   1000,
	}
}

// FrameSnapshot is the immutable per-frame view published for stream
// consumers.
type FrameSnapshot struct {
	Time   time.Time            `json:"t"`
	Frame  uint64               `json:"frame"`
	Camera CameraSnapshot       `json:"camera"`
	Scene  scene.ObjectSnapshot `json:"scene"`
}

// CameraSnapshot is the camera pose at snapshot time.
type CameraSnapshot struct {
	AzimuthDeg   float64    `json:"azimuth_deg"`
	ElevationDeg float64    `json:"elevation_deg"`
	Distance     float64    `json:"distance"`
	Target       [3]float64 `json:"target"`
	Eye          [3]float64 `json:"eye"`
}

// frameCallback keeps registration order stable for sequential dispatch.
type frameCallback struct {
	id int
	fn func(dt float64)
}

// Globe is the production Surface: it owns the scene root and camera and
// runs the frame loop. The loop goroutine is the single writer for all
// scene state.
type Globe struct {
	cfg    Config
	assets fs.FS
	logger *slog.Logger

	ready atomic.Bool

	// Constructed at readiness, then only touched on the frame loop.
	root *scene.Group
	cam  *orbitCamera

	cbMu      sync.Mutex
	callbacks []frameCallback
	nextCBID  int

	flight *flight

	frames uint64
	latest atomic.Pointer[FrameSnapshot]
}

// NewGlobe creates the surface. It is not Ready until Start has run and
// the construction delay has elapsed.
func NewGlobe(cfg Config, assets fs.FS, logger *slog.Logger) *Globe {
	return &Globe{cfg: cfg, assets: assets, logger: logger}
}

// Ready implements Surface.
func (g *Globe) Ready() bool { return g.ready.Load() }

// SceneRoot implements Surface.
func (g *Globe) SceneRoot() *scene.Group { return g.root }

// Controls implements Surface.
func (g *Globe) Controls() Controls {
	if g.cam == nil {
		return nil
	}
	return g.cam
}

// GlobeRadius implements Surface.
func (g *Globe) GlobeRadius() float64 { return g.cfg.GlobeRadius }

// Latest returns the most recently published frame snapshot, or nil
// before the first frame. Safe from any goroutine.
func (g *Globe) Latest() *FrameSnapshot { return g.latest.Load() }

// OnFrame implements Surface.
func (g *Globe) OnFrame(fn func(dt float64)) (cancel func()) {
	g.cbMu.Lock()
	defer g.cbMu.Unlock()

	id := g.nextCBID
	g.nextCBID++
	g.callbacks = append(g.callbacks, frameCallback{id: id, fn: fn})

	return func() {
		g.cbMu.Lock()
		defer g.cbMu.Unlock()
		for i, cb := range g.callbacks {
			if cb.id == id {
				g.callbacks = append(g.callbacks[:i], g.callbacks[i+1:]...)
				return
			}
		}
	}
}

// LoadTexture implements Surface. Assets resolve against the embedded
// web content; viewers fetch them by the returned path.
func (g *Globe) LoadTexture(name string) (string, error) {
	if _, err := fs.Stat(g.assets, name); err != nil {
		return "", fmt.Errorf("texture %q: %w", name, err)
	}
	return "/" + name, nil
}

// FlyTo implements Surface. The transition eases the camera target and
// distance over the duration; altitude is the end distance from origin.
func (g *Globe) FlyTo(lat, lon, altitude float64, duration time.Duration) {
	if g.cam == nil {
		return
	}
	target := geo.ToCartesian(lat, lon, g.cfg.GlobeRadius)
	if duration <= 0 {
		g.cam.SetTarget(target)
		g.cam.setDistance(altitude)
		return
	}
	g.flight = &flight{
		fromTarget: g.cam.Target(),
		toTarget:   target,
		fromDist:   g.cam.Distance(),
		toDist:     altitude,
		remaining:  duration,
		total:      duration,
	}
}

// Start constructs the scene root and camera after the configured delay,
// then runs the frame loop until ctx is cancelled. Blocks; run it on its
// own goroutine.
func (g *Globe) Start(ctx context.Context) {
	if g.cfg.InitDelay > 0 {
		select {
		case <-time.After(g.cfg.InitDelay):
		case <-ctx.Done():
			return
		}
	}

	g.initialize()

	interval := time.Second / time.Duration(g.cfg.FrameRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			g.logger.Info("host frame loop stopped", "component", "host")
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			g.Step(now, dt)
		}
	}
}

// initialize constructs the scene root and camera and flips readiness.
func (g *Globe) initialize() {
	g.root = scene.NewGroup("root")
	g.cam = newOrbitCamera(g.cfg)
	g.ready.Store(true)

	g.logger.Info("host surface ready",
		"component", "host",
		"frame_rate", g.cfg.FrameRate,
		"globe_radius", g.cfg.GlobeRadius,
	)
}

// Step runs one frame: camera transition easing, then registered
// callbacks in order, then snapshot publication. Exported so tests can
// drive frames without the wall-clock ticker.
func (g *Globe) Step(now time.Time, dt float64) {
	start := time.Now()

	g.advanceFlight(dt)

	g.cbMu.Lock()
	cbs := make([]frameCallback, len(g.callbacks))
	copy(cbs, g.callbacks)
	g.cbMu.Unlock()

	for _, cb := range cbs {
		cb.fn(dt)
	}

	g.frames++
	g.publish(now)

	metrics.ObserveFrameDuration(time.Since(start))
}

func (g *Globe) publish(now time.Time) {
	eye := g.cam.eye()
	target := g.cam.Target()
	snap := &FrameSnapshot{
		Time:  now.UTC(),
		Frame: g.frames,
		Camera: CameraSnapshot{
			AzimuthDeg:   g.cam.azimuthDeg,
			ElevationDeg: g.cam.elevationDeg,
			Distance:     g.cam.distance,
			Target:       [3]float64{target.X, target.Y, target.Z},
			Eye:          [3]float64{eye.X, eye.Y, eye.Z},
		},
		Scene: g.root.Snapshot(),
	}
	g.latest.Store(snap)
}

// flight is an in-progress FlyTo transition.
type flight struct {
	fromTarget, toTarget r3.Vec
	fromDist, toDist     float64
	remaining, total     time.Duration
}

func (g *Globe) advanceFlight(dt float64) {
	f := g.flight
	if f == nil {
		return
	}
	f.remaining -= time.Duration(dt * float64(time.Second))
	if f.remaining <= 0 {
		g.cam.SetTarget(f.toTarget)
		g.cam.setDistance(f.toDist)
		g.flight = nil
		return
	}

	// Smoothstep easing on the elapsed fraction.
	t := 1 - f.remaining.Seconds()/f.total.Seconds()
	e := t * t * (3 - 2*t)
	g.cam.SetTarget(r3.Add(f.fromTarget, r3.Scale(e, r3.Sub(f.toTarget, f.fromTarget))))
	g.cam.setDistance(f.fromDist + e*(f.toDist-f.fromDist))
}

// orbitCamera holds azimuth/elevation/distance around a target point.
type orbitCamera struct {
	cfg          Config
	azimuthDeg   float64
	elevationDeg float64
	distance     float64
	target       r3.Vec
}

func newOrbitCamera(cfg Config) *orbitCamera {
	return &orbitCamera{
		cfg:          cfg,
		elevationDeg: 20,
		distance:     cfg.StartDistance,
	}
}

// Rotate implements Controls. Elevation clamps short of the poles to
// keep the view matrix well-defined.
func (c *orbitCamera) Rotate(dAz, dEl float64) {
	c.azimuthDeg = math.Mod(c.azimuthDeg+dAz, 360)
	c.elevationDeg = clamp(c.elevationDeg+dEl, -89, 89)
}

// Zoom implements Controls.
func (c *orbitCamera) Zoom(dDist float64) {
	c.setDistance(c.distance + dDist)
}

func (c *orbitCamera) setDistance(d float64) {
	c.distance = clamp(d, c.cfg.MinDistance, c.cfg.MaxDistance)
}

// Distance implements Controls.
func (c *orbitCamera) Distance() float64 { return c.distance }

// Target implements Controls.
func (c *orbitCamera) Target() r3.Vec { return c.target }

// SetTarget implements Controls.
func (c *orbitCamera) SetTarget(v r3.Vec) { c.target = v }

// eye returns the camera position derived from the orbit parameters.
func (c *orbitCamera) eye() r3.Vec {
	az := c.azimuthDeg * geo.Deg2Rad
	el := c.elevationDeg * geo.Deg2Rad
	offset := r3.Vec{
		X: c.distance * math.Cos(el) * math.Cos(az),
		Y: c.distance * math.Sin(el),
		Z: c.distance * math.Cos(el) * math.Sin(az),
	}
	return r3.Add(c.target, offset)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
