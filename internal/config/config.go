// Package config loads the visual knob file. Every value has a default;
// a missing file means defaults, a present file overrides only the keys
// it names. Server wiring (addresses, tokens, upstream URL) comes from
// environment variables in cmd, not from this file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/anim"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/beam"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/camera"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/host"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/view"
)

// Config is the full knob file.
type Config struct {
	View   ViewConfig    `yaml:"view"`
	Host   HostConfig    `yaml:"host"`
	Beam   beam.Config   `yaml:"beam"`
	Anim   anim.Config   `yaml:"anim"`
	Camera camera.Config `yaml:"camera"`
}

// ViewConfig selects the tracked satellite and styles the overlay.
type ViewConfig struct {
	Satellite      string  `yaml:"satellite"`        // default "Polytech_Universe-3"
	WindowMinutes  int     `yaml:"window_minutes"`   // default 180
	StepSeconds    int     `yaml:"step_seconds"`     // default 20
	RefreshSeconds int     `yaml:"refresh_seconds"`  // default 60
	SunSeconds     int     `yaml:"sun_seconds"`      // default 60
	TrackColor     string  `yaml:"track_color"`      // default "#ffaa00"
	TrackWidth     float64 `yaml:"track_width"`      // default 2
	TrackAltFactor float64 `yaml:"track_alt_factor"` // default 1.005
	MarkerTexture  string  `yaml:"marker_texture"`   // default "satellite.svg"
	MarkerSize     float64 `yaml:"marker_size"`      // default 8
	FlyToSeconds   float64 `yaml:"fly_to_seconds"`   // default 2
}

// HostConfig shapes the frame loop and camera envelope.
type HostConfig struct {
	FrameRate     int     `yaml:"frame_rate"`     // default 30
	GlobeRadius   float64 `yaml:"globe_radius"`   // default 100
	StartDistance float64 `yaml:"start_distance"` // default 400
	MinDistance   float64 `yaml:"min_distance"`   // default 120
	MaxDistance   float64 `yaml:"max_distance"`   // default 1000
}

// Default returns the built-in knob values.
func Default() Config {
	viewDefaults := view.DefaultConfig()
	hostDefaults := host.DefaultConfig()
	return Config{
		View: ViewConfig{
			Satellite:      viewDefaults.Satellite,
			WindowMinutes:  int(viewDefaults.Window.Minutes()),
			StepSeconds:    int(viewDefaults.Step.Seconds()),
			RefreshSeconds: int(viewDefaults.RefreshInterval.Seconds()),
			SunSeconds:     int(viewDefaults.SunInterval.Seconds()),
			TrackColor:     viewDefaults.TrackColor,
			TrackWidth:     viewDefaults.TrackWidth,
			TrackAltFactor: viewDefaults.TrackAltFactor,
			MarkerTexture:  viewDefaults.MarkerTexture,
			MarkerSize:     viewDefaults.MarkerSize,
			FlyToSeconds:   viewDefaults.FlyToDuration.Seconds(),
		},
		Host: HostConfig{
			FrameRate:     hostDefaults.FrameRate,
			GlobeRadius:   hostDefaults.GlobeRadius,
			StartDistance: hostDefaults.StartDistance,
			MinDistance:   hostDefaults.MinDistance,
			MaxDistance:   hostDefaults.MaxDistance,
		},
		Beam:   beam.DefaultConfig(),
		Anim:   anim.DefaultConfig(),
		Camera: camera.DefaultConfig(),
	}
}

// Load reads the knob file at path, overlaying it on the defaults. An
// empty path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.View.Satellite == "" {
		return fmt.Errorf("view.satellite must not be empty")
	}
	if c.View.WindowMinutes <= 0 || c.View.WindowMinutes > 1440 {
		return fmt.Errorf("view.window_minutes must be 1-1440, got %d", c.View.WindowMinutes)
	}
	if c.View.StepSeconds <= 0 || c.View.StepSeconds > 3600 {
		return fmt.Errorf("view.step_seconds must be 1-3600, got %d", c.View.StepSeconds)
	}
	if c.Host.FrameRate <= 0 || c.Host.FrameRate > 120 {
		return fmt.Errorf("host.frame_rate must be 1-120, got %d", c.Host.FrameRate)
	}
	if c.Host.GlobeRadius <= 0 {
		return fmt.Errorf("host.globe_radius must be positive, got %v", c.Host.GlobeRadius)
	}
	if c.Host.MinDistance <= c.Host.GlobeRadius {
		return fmt.Errorf("host.min_distance must exceed the globe radius")
	}
	if c.Host.MaxDistance <= c.Host.MinDistance {
		return fmt.Errorf("host.max_distance must exceed host.min_distance")
	}
	if c.Beam.ParticleCount < 0 || c.Beam.ParticleCount > 100000 {
		return fmt.Errorf("beam.particle_count must be 0-100000, got %d", c.Beam.ParticleCount)
	}
	if c.Beam.FootprintFrac <= 0 || c.Beam.FootprintFrac >= 1 {
		return fmt.Errorf("beam.footprint_frac must be in (0, 1), got %v", c.Beam.FootprintFrac)
	}
	return nil
}

// ToView produces the view package's config from the knob file.
func (c Config) ToView() view.Config {
	return view.Config{
		Satellite:       c.View.Satellite,
		Window:          time.Duration(c.View.WindowMinutes) * time.Minute,
		Step:            time.Duration(c.View.StepSeconds) * time.Second,
		RefreshInterval: time.Duration(c.View.RefreshSeconds) * time.Second,
		SunInterval:     time.Duration(c.View.SunSeconds) * time.Second,
		TrackColor:      c.View.TrackColor,
		TrackWidth:      c.View.TrackWidth,
		TrackAltFactor:  c.View.TrackAltFactor,
		MarkerTexture:   c.View.MarkerTexture,
		MarkerSize:      c.View.MarkerSize,
		FlyToDuration:   time.Duration(c.View.FlyToSeconds * float64(time.Second)),
		Beam:            c.Beam,
		Anim:            c.Anim,
		Camera:          c.Camera,
	}
}

// ToHost produces the host package's config from the knob file.
func (c Config) ToHost() host.Config {
	return host.Config{
		FrameRate:     c.Host.FrameRate,
		GlobeRadius:   c.Host.GlobeRadius,
		StartDistance: c.Host.StartDistance,
		MinDistance:   c.Host.MinDistance,
		MaxDistance:   c.Host.MaxDistance,
	}
}
