package camera

import (
	"testing"
)

// fakeControls records deltas and lets tests script the distance.
type fakeControls struct {
	azimuth, elevation float64
	distance           float64
}

func (f *fakeControls) Rotate(dAz, dEl float64) {
	f.azimuth += dAz
	f.elevation += dEl
}

func (f *fakeControls) Zoom(dDist float64) {
	f.distance += dDist
}

func (f *fakeControls) Distance() float64 { return f.distance }

func TestParseCommand(t *testing.T) {
	valid := map[string]Command{
		"rotate_left":  RotateLeft,
		"rotate_right": RotateRight,
		"rotate_up":    RotateUp,
		"rotate_down":  RotateDown,
		"zoom_in":      ZoomIn,
		"zoom_out":     ZoomOut,
	}
	for name, want := range valid {
		got, err := ParseCommand(name)
		if err != nil || got != want {
			t.Errorf("ParseCommand(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := ParseCommand("barrel_roll"); err == nil {
		t.Error("expected error for unknown command")
	}
}

func TestApplyDeltas(t *testing.T) {
	tests := []struct {
		name     string
		cmd      Command
		wantAz   float64
		wantEl   float64
		wantZoom float64
	}{
		{"rotate left", RotateLeft, -10, 0, 0},
		{"rotate right", RotateRight, 10, 0, 0},
		{"rotate up", RotateUp, 0, 10, 0},
		{"rotate down", RotateDown, 0, -10, 0},
		{"zoom in", ZoomIn, 0, 0, -20},
		{"zoom out", ZoomOut, 0, 0, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			controls := &fakeControls{distance: 500}
			c := New(controls, DefaultConfig(), nil)

			c.Apply(tt.cmd)

			if controls.azimuth != tt.wantAz || controls.elevation != tt.wantEl {
				t.Errorf("rotation: got (%v, %v), want (%v, %v)",
					controls.azimuth, controls.elevation, tt.wantAz, tt.wantEl)
			}
			if controls.distance-500 != tt.wantZoom {
				t.Errorf("zoom delta: got %v, want %v", controls.distance-500, tt.wantZoom)
			}
			if c.State() != Idle {
				t.Errorf("controller not back to Idle after Apply")
			}
		})
	}
}

func TestDetailVisibility(t *testing.T) {
	var events []bool
	controls := &fakeControls{distance: 500}
	c := New(controls, DefaultConfig(), func(v bool) { events = append(events, v) })

	if c.DetailVisible() {
		t.Fatal("detail visible at distance 500 with threshold 340")
	}

	// Zoom in past the threshold: 500 → 340 is not below, 320 is.
	c.ObserveDistance(340)
	if c.DetailVisible() {
		t.Fatal("threshold is exclusive: 340 must not show detail")
	}
	c.ObserveDistance(320)
	if !c.DetailVisible() {
		t.Fatal("detail hidden below threshold")
	}

	// Repeated observations on the same side do not re-fire the callback.
	c.ObserveDistance(300)
	c.ObserveDistance(680)

	want := []bool{true, false}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("events = %v, want %v", events, want)
		}
	}
}

func TestApplyObservesDistance(t *testing.T) {
	controls := &fakeControls{distance: 350}
	c := New(controls, DefaultConfig(), nil)

	c.Apply(ZoomIn) // 350 → 330, crosses the 340 threshold
	if !c.DetailVisible() {
		t.Fatal("zooming under the threshold did not enable detail")
	}
}
