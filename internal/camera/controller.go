// Package camera converts discrete navigation commands into orbit-camera
// updates and derives the detail-visibility signal from camera distance.
package camera

import (
	"fmt"
)

// Command is a discrete navigation input.
type Command int

const (
	RotateLeft Command = iota
	RotateRight
	RotateUp
	RotateDown
	ZoomIn
	ZoomOut
)

// ParseCommand maps the wire names used by the control endpoint.
func ParseCommand(name string) (Command, error) {
	switch name {
	case "rotate_left":
		return RotateLeft, nil
	case "rotate_right":
		return RotateRight, nil
	case "rotate_up":
		return RotateUp, nil
	case "rotate_down":
		return RotateDown, nil
	case "zoom_in":
		return ZoomIn, nil
	case "zoom_out":
		return ZoomOut, nil
	}
	return 0, fmt.Errorf("unknown camera command %q", name)
}

// Controls is the camera surface the controller drives: relative rotate
// and zoom plus the current distance from the origin. Provided by the
// host rendering surface.
type Controls interface {
	Rotate(dAzimuthDeg, dElevationDeg float64)
	Zoom(dDistance float64)
	Distance() float64
}

// State is the controller's interaction state. All transitions are
// synchronous local mutations: a command enters Navigating, applies its
// bounded delta, and returns to Idle before Apply returns.
type State int

const (
	Idle State = iota
	Navigating
)

// Config holds the per-command deltas and the detail threshold.
type Config struct {
	RotateStepDeg   float64 `yaml:"rotate_step_deg"`  // default 10
	ZoomStep        float64 `yaml:"zoom_step"`        // scene units, default 20
	DetailThreshold float64 `yaml:"detail_threshold"` // distance below which labels show, default 340
}

// DefaultConfig returns the documented defaults for a sphere radius of 100.
func DefaultConfig() Config {
	return Config{RotateStepDeg: 10, ZoomStep: 20, DetailThreshold: 340}
}

// Controller owns the interaction state machine. Single-writer: all
// methods are called from the frame loop goroutine.
type Controller struct {
	controls Controls
	cfg      Config

	state         State
	detailVisible bool

	// onDetailChange fires when the derived visibility flips; the scene
	// composer uses it to gate label rendering.
	onDetailChange func(visible bool)
}

// New creates a controller and derives the initial visibility from the
// current camera distance.
func New(controls Controls, cfg Config, onDetailChange func(bool)) *Controller {
	c := &Controller{
		controls:       controls,
		cfg:            cfg,
		state:          Idle,
		onDetailChange: onDetailChange,
	}
	c.detailVisible = controls.Distance() < cfg.DetailThreshold
	return c
}

// State returns the current interaction state.
func (c *Controller) State() State { return c.state }

// DetailVisible reports whether fine-grained labels should be composed.
func (c *Controller) DetailVisible() bool { return c.detailVisible }

// Apply executes one discrete command: an immediate, bounded delta to
// azimuth/elevation/distance, then back to Idle.
func (c *Controller) Apply(cmd Command) {
	c.state = Navigating
	switch cmd {
	case RotateLeft:
		c.controls.Rotate(-c.cfg.RotateStepDeg, 0)
	case RotateRight:
		c.controls.Rotate(c.cfg.RotateStepDeg, 0)
	case RotateUp:
		c.controls.Rotate(0, c.cfg.RotateStepDeg)
	case RotateDown:
		c.controls.Rotate(0, -c.cfg.RotateStepDeg)
	case ZoomIn:
		c.controls.Zoom(-c.cfg.ZoomStep)
	case ZoomOut:
		c.controls.Zoom(c.cfg.ZoomStep)
	}
	c.state = Idle
	c.ObserveDistance(c.controls.Distance())
}

// ObserveDistance recomputes the detail flag from a camera-change event.
func (c *Controller) ObserveDistance(distance float64) {
	visible := distance < c.cfg.DetailThreshold
	if visible == c.detailVisible {
		return
	}
	c.detailVisible = visible
	if c.onDetailChange != nil {
		c.onDetailChange(visible)
	}
}
