// Package view composes the orbit ground-track overlay and owns its
// lifecycle: segment polylines, the satellite marker and label, the beam
// rig with its animation, the lighting rig, and the camera controller.
//
// All scene mutation happens on the host's frame loop. Track fetches run
// on their own goroutines and hand results back to the loop through a
// channel tagged with a generation counter; only the newest generation
// is ever applied (last-request-wins).
package view

import (
	"context"
	"log/slog"
	"math/rand"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/anim"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/beam"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/camera"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/ephemeris"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/geo"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/host"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/metrics"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/orbit"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/scene"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/track"
)

// State is the view's lifecycle state. The transition out of
// WaitingForHost happens at most once, re-evaluated once per frame.
type State int

const (
	WaitingForHost State = iota
	Ready
)

// Config holds the view's data selection and styling knobs.
type Config struct {
	Satellite string        // satellite identifier for track lookups
	Window    time.Duration // track window length (default: 180m)
	Step      time.Duration // sampling step (default: 20s)

	RefreshInterval time.Duration // track refetch period (default: 60s)
	SunInterval     time.Duration // sun light update period (default: 60s)

	TrackColor     string  // default "#ffaa00"
	TrackWidth     float64 // default 2
	TrackAltFactor float64 // polyline radius factor over the globe (default: 1.005)

	MarkerTexture string  // default "satellite.svg"
	MarkerSize    float64 // default 8

	FlyToDuration time.Duration // POV transition length (default: 2s)
	FlyToAltitude float64       // POV end distance; 0 keeps the current distance

	Beam   beam.Config
	Anim   anim.Config
	Camera camera.Config
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		Satellite:       "Polytech_Universe-3",
		Window:          180 * time.Minute,
		Step:            20 * time.Second,
		RefreshInterval: 60 * time.Second,
		SunInterval:     60 * time.Second,
		TrackColor:      "#ffaa00",
		TrackWidth:      2,
		TrackAltFactor:  1.005,
		MarkerTexture:   "satellite.svg",
		MarkerSize:      8,
		FlyToDuration:   2 * time.Second,
		Beam:            beam.DefaultConfig(),
		Anim:            anim.DefaultConfig(),
		Camera:          camera.DefaultConfig(),
	}
}

// Status is a thread-safe snapshot of the view's state for the API.
type Status struct {
	State       string    `json:"state"`
	Satellite   string    `json:"sat"`
	TrackPoints int       `json:"track_points"`
	Segments    int       `json:"segments"`
	BeamActive  bool      `json:"beam_active"`
	LastFetch   time.Time `json:"last_fetch,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
}

type fetchResult struct {
	gen  uint64
	snap *orbit.Snapshot
	err  error
}

type viewRequest struct {
	satellite string
	window    time.Duration
	step      time.Duration
}

// TrackFetcher is the view's track source. Satisfied by *orbit.Client
// and by the caching wrapper around it.
type TrackFetcher interface {
	FetchTrack(ctx context.Context, req orbit.Request) (*orbit.Snapshot, error)
}

// GlobeView is the scene composer. Construct with New, then let the
// host's frame loop drive it; Close tears everything down.
type GlobeView struct {
	cfg     Config
	logger  *slog.Logger
	client  TrackFetcher
	surface host.Surface
	rng     *rand.Rand

	state   State
	overlay *scene.Group
	lights  *scene.LightingRig
	cam     *camera.Controller
	rig     *beam.Rig
	sched   *anim.Scheduler
	label   *scene.Label
	current *geo.Point

	// Fetch race state: gen is bumped per request; results arriving with
	// an older generation are dropped, never applied.
	gen     atomic.Uint64
	results chan fetchResult

	commands chan camera.Command
	viewReqs chan viewRequest

	refreshElapsed float64
	sunElapsed     float64
	sunPrimed      bool

	frameCancel func()
	closed      bool

	// fetch launches the asynchronous track request; swapped out in tests.
	fetch func(gen uint64, req orbit.Request)

	status atomic.Pointer[Status]
}

// New creates the view and registers it on the host's frame loop. The
// host surface may become ready only after an indeterminate delay; the
// view waits, re-checking once per frame.
func New(cfg Config, client TrackFetcher, surface host.Surface, logger *slog.Logger) *GlobeView {
	v := &GlobeView{
		cfg:      cfg,
		logger:   logger,
		client:   client,
		surface:  surface,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		state:    WaitingForHost,
		results:  make(chan fetchResult, 4),
		commands: make(chan camera.Command, 16),
		viewReqs: make(chan viewRequest, 4),
	}
	v.fetch = v.doFetch
	v.publishStatus()
	v.frameCancel = surface.OnFrame(v.frame)
	return v
}

// Status returns the latest published status. Safe from any goroutine.
func (v *GlobeView) Status() Status {
	return *v.status.Load()
}

// EnqueueCamera hands a navigation command to the frame loop. Safe from
// any goroutine; drops the command if the queue is full.
func (v *GlobeView) EnqueueCamera(cmd camera.Command) {
	select {
	case v.commands <- cmd:
	default:
		v.logger.Warn("camera command dropped, queue full", "component", "view")
	}
}

// SetView switches the tracked satellite and window. The change applies
// on the next frame and triggers an immediate refetch.
func (v *GlobeView) SetView(satellite string, window, step time.Duration) {
	select {
	case v.viewReqs <- viewRequest{satellite: satellite, window: window, step: step}:
	default:
		v.logger.Warn("view request dropped, queue full", "component", "view")
	}
}

// frame is the per-frame update, invoked by the host after layout.
func (v *GlobeView) frame(dt float64) {
	if v.closed {
		return
	}

	if v.state == WaitingForHost {
		if !v.surface.Ready() {
			return
		}
		v.initialize()
	}

	v.drainViewRequests()
	v.drainCommands()
	v.drainResults()

	// FlyTo moves the camera outside the controller, so the detail flag
	// has to track the live distance, not just command deltas.
	v.cam.ObserveDistance(v.surface.Controls().Distance())
	v.updateSun(dt)

	v.refreshElapsed += dt
	if v.refreshElapsed >= v.cfg.RefreshInterval.Seconds() {
		v.refreshElapsed = 0
		v.Refresh()
	}
}

// initialize attaches the overlay and lights and starts the first fetch.
// Runs exactly once, on the first frame where the host is ready.
func (v *GlobeView) initialize() {
	root := v.surface.SceneRoot()

	v.overlay = scene.NewGroup("orbit-overlay")
	root.Add(v.overlay)

	// One ambient + one directional light for the scene's lifetime,
	// mutated in place by the sun updater, never recreated.
	v.lights = scene.NewLightingRig()
	root.Add(v.lights.Ambient)
	root.Add(v.lights.Sun)
	v.lights.SetSunDirection(ephemeris.SunDirection(time.Now()))

	v.cam = camera.New(v.surface.Controls(), v.cfg.Camera, v.onDetailChange)

	v.state = Ready
	v.logger.Info("host ready, overlay attached", "component", "view", "sat", v.cfg.Satellite)

	v.publishStatus()
	v.Refresh()
}

// Refresh starts an asynchronous track fetch. The newest call wins: any
// response carrying an older generation is discarded on arrival.
func (v *GlobeView) Refresh() {
	gen := v.gen.Add(1)
	v.fetch(gen, orbit.Request{
		Satellite: v.cfg.Satellite,
		Window:    v.cfg.Window,
		Step:      v.cfg.Step,
	})
}

func (v *GlobeView) doFetch(gen uint64, req orbit.Request) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		snap, err := v.client.FetchTrack(ctx, req)
		select {
		case v.results <- fetchResult{gen: gen, snap: snap, err: err}:
		default:
			// Queue full means newer results are already pending; this
			// one is stale by construction.
			metrics.IncStaleResponsesDropped()
		}
	}()
}

func (v *GlobeView) drainViewRequests() {
	for {
		select {
		case req := <-v.viewReqs:
			v.cfg.Satellite = req.satellite
			if req.window > 0 {
				v.cfg.Window = req.window
			}
			if req.step > 0 {
				v.cfg.Step = req.step
			}
			v.refreshElapsed = 0
			v.Refresh()
		default:
			return
		}
	}
}

func (v *GlobeView) drainCommands() {
	for {
		select {
		case cmd := <-v.commands:
			v.cam.Apply(cmd)
		default:
			return
		}
	}
}

func (v *GlobeView) drainResults() {
	for {
		select {
		case res := <-v.results:
			v.apply(res)
		default:
			return
		}
	}
}

// apply handles one fetch result on the frame loop.
func (v *GlobeView) apply(res fetchResult) {
	if res.gen != v.gen.Load() {
		metrics.IncStaleResponsesDropped()
		v.logger.Debug("stale track response dropped",
			"component", "view",
			"response_gen", res.gen,
			"current_gen", v.gen.Load(),
		)
		return
	}

	if res.err != nil {
		metrics.IncTrackFetches("error")
		v.logger.Warn("track fetch failed", "component", "view", "error", res.err)
		v.setError(res.err.Error())
		return
	}

	metrics.IncTrackFetches("ok")
	v.rebuild(res.snap)
}

// rebuild recreates the whole overlay from one snapshot. No incremental
// diffing: the track is small and rebuild cost is dominated by fetch
// latency, not CPU.
func (v *GlobeView) rebuild(snap *orbit.Snapshot) {
	v.teardownBeam()
	v.overlay.Clear()
	v.label = nil
	v.current = nil

	radius := v.surface.GlobeRadius()

	segments := track.Split(snap.Track)
	for i, seg := range segments {
		line := &scene.Polyline{
			Name:  "track-segment-" + strconv.Itoa(i),
			Color: v.cfg.TrackColor,
			Width: v.cfg.TrackWidth,
		}
		for _, p := range seg.Points {
			line.Points = append(line.Points, geo.ToCartesian(p.Lat, p.Lon, radius*v.cfg.TrackAltFactor))
		}
		v.overlay.Add(line)
	}

	hasBeam := false
	if snap.Current != nil && snap.Current.Valid() {
		cur := *snap.Current
		v.current = &cur
		v.composeSatellite(cur, radius)
		hasBeam = true

		altitude := v.cfg.FlyToAltitude
		if altitude == 0 {
			altitude = v.surface.Controls().Distance()
		}
		v.surface.FlyTo(cur.Lat, cur.Lon, altitude, v.cfg.FlyToDuration)
	}

	metrics.IncSceneRebuilds()
	metrics.SetBeamActive(hasBeam)

	v.logger.Info("overlay rebuilt",
		"component", "view",
		"sat", snap.Sat,
		"raw_points", len(snap.Track),
		"segments", len(segments),
		"beam", hasBeam,
	)

	st := Status{
		State:       "ready",
		Satellite:   v.cfg.Satellite,
		TrackPoints: len(snap.Track),
		Segments:    len(segments),
		BeamActive:  hasBeam,
		LastFetch:   time.Now().UTC(),
	}
	v.status.Store(&st)
}

// composeSatellite adds the marker, optional label, beam rig, and the
// rig's animation for a valid current position.
func (v *GlobeView) composeSatellite(cur geo.Point, radius float64) {
	texture, err := v.surface.LoadTexture(v.cfg.MarkerTexture)
	if err != nil {
		// Marker still renders as an untextured point sprite.
		v.logger.Warn("marker texture unavailable", "component", "view", "error", err)
		texture = ""
	}

	markerPos := geo.ToCartesian(cur.Lat, cur.Lon, radius*v.cfg.Beam.SatAltFactor)
	v.overlay.Add(&scene.Marker{
		Name:     "satellite",
		Position: markerPos,
		Texture:  texture,
		Size:     v.cfg.MarkerSize,
	})

	v.label = &scene.Label{
		Name:     "satellite-label",
		Position: markerPos,
		Text:     v.cfg.Satellite,
	}
	if v.cam.DetailVisible() {
		v.overlay.Add(v.label)
	}

	v.rig = beam.Build(cur, radius, v.cfg.Beam, v.rng)
	v.overlay.Add(v.rig.Root)
	v.sched = anim.Start(v.rig, v.cfg.Anim, v.rng, v.surface, v.logger)
	metrics.SetBeamParticles(len(v.rig.Particles.Particles))
}

// teardownBeam stops the animation and disposes the rig, in that order:
// a tick must never touch freed geometry.
func (v *GlobeView) teardownBeam() {
	if v.sched != nil {
		v.sched.Stop()
		v.sched = nil
	}
	if v.rig != nil {
		v.rig.Dispose()
		v.rig = nil
	}
	metrics.SetBeamActive(false)
	metrics.SetBeamParticles(0)
}

// onDetailChange gates the satellite label on camera distance.
func (v *GlobeView) onDetailChange(visible bool) {
	if v.label == nil {
		return
	}
	if visible {
		v.overlay.Add(v.label)
	} else {
		v.overlay.Remove(v.label)
	}
}

// updateSun re-aims the shared directional light on a fixed wall-clock
// interval rather than every frame.
func (v *GlobeView) updateSun(dt float64) {
	v.sunElapsed += dt
	if v.sunPrimed && v.sunElapsed < v.cfg.SunInterval.Seconds() {
		return
	}
	v.sunPrimed = true
	v.sunElapsed = 0
	v.lights.SetSunDirection(ephemeris.SunDirection(time.Now()))
}

// Close tears the view down: cancels the frame callback, stops the
// animation, disposes the beam, and detaches the overlay and lights.
// In-flight fetch responses are ignored via the generation bump.
// Disposal is best-effort; it never fails the caller.
func (v *GlobeView) Close() {
	if v.closed {
		return
	}
	v.closed = true

	v.gen.Add(1) // anything in flight is now stale
	if v.frameCancel != nil {
		v.frameCancel()
	}
	v.teardownBeam()

	if v.state == Ready {
		root := v.surface.SceneRoot()
		root.Remove(v.overlay)
		root.Remove(v.lights.Ambient)
		root.Remove(v.lights.Sun)
	}

	v.logger.Info("view closed", "component", "view")
}

func (v *GlobeView) setError(msg string) {
	st := v.Status()
	st.LastError = msg
	v.status.Store(&st)
}

func (v *GlobeView) publishStatus() {
	name := "waiting_for_host"
	if v.state == Ready {
		name = "ready"
	}
	st := Status{State: name, Satellite: v.cfg.Satellite, BeamActive: v.rig != nil}
	v.status.Store(&st)
}

