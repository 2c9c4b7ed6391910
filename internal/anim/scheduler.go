// Package anim drives the per-frame animation of one live beam rig:
// footprint pulsing, the cone's scan phase, and particle descent.
package anim

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/beam"
)

// FrameSource schedules a callback on every display-frame boundary,
// strictly after the frame's layout/composition step. The returned
// cancel function stops further callbacks.
type FrameSource interface {
	OnFrame(fn func(dt float64)) (cancel func())
}

// Config holds animation rates.
type Config struct {
	PulseHz  float64 `yaml:"pulse_hz"`  // footprint pulse frequency, default 0.5
	ScanRate float64 `yaml:"scan_rate"` // cone scan phase advance per second, default 1.0
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{PulseHz: 0.5, ScanRate: 1.0}
}

// Scheduler animates a single rig. It must be stopped before the rig's
// resources are freed; a missed Stop would leave a perpetual callback
// mutating disposed geometry.
type Scheduler struct {
	rig    *beam.Rig
	cfg    Config
	rng    *rand.Rand
	logger *slog.Logger

	baseRingOpacity float64
	elapsed         float64

	cancel  func()
	running bool
}

// Start registers the scheduler on the frame source and begins ticking.
func Start(rig *beam.Rig, cfg Config, rng *rand.Rand, frames FrameSource, logger *slog.Logger) *Scheduler {
	s := &Scheduler{
		rig:             rig,
		cfg:             cfg,
		rng:             rng,
		logger:          logger,
		baseRingOpacity: rig.Ring.Opacity,
		running:         true,
	}
	s.cancel = frames.OnFrame(s.Tick)
	return s
}

// Running reports whether the scheduler is still registered for ticks.
func (s *Scheduler) Running() bool { return s.running }

// Stop cancels further ticks. Idempotent; must run before the rig is
// disposed.
func (s *Scheduler) Stop() {
	if !s.running {
		return
	}
	s.running = false
	s.cancel()
	s.logger.Debug("animation stopped", "component", "anim")
}

// Tick advances all animation state by dt seconds. The three effects are
// independent; none suspends.
func (s *Scheduler) Tick(dt float64) {
	if !s.running || s.rig.Disposed() {
		return
	}
	s.elapsed += dt

	wave := math.Sin(2 * math.Pi * s.cfg.PulseHz * s.elapsed)

	// (a) footprint pulse: opacity and scale breathe on the same sinusoid.
	s.rig.Ring.Opacity = s.baseRingOpacity * (0.75 + 0.25*wave)
	s.rig.Ring.Scale = 1 + 0.05*wave

	// (b) cone scan phase for the shader-style sweep.
	s.rig.Cone.ScanTime += dt * s.cfg.ScanRate

	// (c) particle descent with a sinusoid-modulated rate; particles that
	// pass the lower bound wrap to the top and reseed.
	rate := 1 + 0.3*wave
	for i := range s.rig.Particles.Particles {
		p := &s.rig.Particles.Particles[i]
		p.Y -= p.Speed * rate * dt
		if p.Y < 0 {
			s.rig.Reseed(p, s.rng)
		}
	}
}
