package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/auth"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/camera"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/host"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/stream"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/view"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// fakeView records control calls.
type fakeView struct {
	commands []camera.Command
	sat      string
	window   time.Duration
	step     time.Duration
}

func (v *fakeView) Status() view.Status {
	return view.Status{State: "ready", Satellite: "TEST-SAT"}
}

func (v *fakeView) EnqueueCamera(cmd camera.Command) {
	v.commands = append(v.commands, cmd)
}

func (v *fakeView) SetView(sat string, window, step time.Duration) {
	v.sat, v.window, v.step = sat, window, step
}

type fakeFrames struct {
	snap *host.FrameSnapshot
}

func (f *fakeFrames) Latest() *host.FrameSnapshot { return f.snap }
func (f *fakeFrames) GlobeRadius() float64        { return 100 }

func testServer(t *testing.T, fv *fakeView, frames *fakeFrames, authCfg auth.Config) http.Handler {
	t.Helper()
	deps := Deps{
		View:    fv,
		Surface: frames,
		Stream: stream.NewHandler(frames, stream.Config{
			MaxConcurrentPerIP: 10,
			KeepaliveInterval:  30 * time.Second,
		}, testLogger()),
		Ready: func() bool { return frames.snap != nil },
		WebFS: fstest.MapFS{
			"index.html":    &fstest.MapFile{Data: []byte("<!doctype html>")},
			"satellite.svg": &fstest.MapFile{Data: []byte("<svg/>")},
		},
	}
	return NewServer("127.0.0.1:0", testLogger(), authCfg, deps).HTTPServer().Handler
}

func TestHealthEndpoints(t *testing.T) {
	fv := &fakeView{}
	frames := &fakeFrames{snap: &host.FrameSnapshot{Frame: 1}}
	h := testServer(t, fv, frames, auth.Config{})

	for _, tt := range []struct {
		path string
		want int
	}{
		{"/healthz", http.StatusOK},
		{"/readyz", http.StatusOK},
	} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest("GET", tt.path, nil))
		if w.Code != tt.want {
			t.Errorf("%s status = %d, want %d", tt.path, w.Code, tt.want)
		}
	}
}

func TestReadyzBeforeFirstFrame(t *testing.T) {
	h := testServer(t, &fakeView{}, &fakeFrames{}, auth.Config{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

func TestSceneSnapshot(t *testing.T) {
	fv := &fakeView{}
	frames := &fakeFrames{snap: &host.FrameSnapshot{Frame: 42}}
	h := testServer(t, fv, frames, auth.Config{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/scene", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	frame := resp["frame"].(map[string]any)
	if frame["frame"].(float64) != 42 {
		t.Errorf("frame = %v, want 42", frame["frame"])
	}
	status := resp["status"].(map[string]any)
	if status["sat"] != "TEST-SAT" {
		t.Errorf("status.sat = %v, want TEST-SAT", status["sat"])
	}
}

func TestSceneSnapshotBeforeFirstFrame(t *testing.T) {
	h := testServer(t, &fakeView{}, &fakeFrames{}, auth.Config{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/scene", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestCameraCommand(t *testing.T) {
	fv := &fakeView{}
	frames := &fakeFrames{snap: &host.FrameSnapshot{Frame: 1}}
	h := testServer(t, fv, frames, auth.Config{})

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"rotate left", `{"command":"rotate_left"}`, http.StatusAccepted},
		{"zoom in", `{"command":"zoom_in"}`, http.StatusAccepted},
		{"unknown command", `{"command":"barrel_roll"}`, http.StatusBadRequest},
		{"bad json", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/v1/camera", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}

	if len(fv.commands) != 2 {
		t.Errorf("commands enqueued = %d, want 2", len(fv.commands))
	}
}

func TestViewSwitch(t *testing.T) {
	fv := &fakeView{}
	frames := &fakeFrames{snap: &host.FrameSnapshot{Frame: 1}}
	h := testServer(t, fv, frames, auth.Config{})

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid", `{"sat":"OTHER-SAT","minutes":90,"step_sec":10}`, http.StatusAccepted},
		{"missing sat", `{"minutes":90}`, http.StatusBadRequest},
		{"minutes out of range", `{"sat":"X","minutes":99999}`, http.StatusBadRequest},
		{"step out of range", `{"sat":"X","step_sec":99999}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/v1/view", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}

	if fv.sat != "OTHER-SAT" || fv.window != 90*time.Minute || fv.step != 10*time.Second {
		t.Errorf("SetView got (%q, %v, %v)", fv.sat, fv.window, fv.step)
	}
}

func TestAuthProtectsControlEndpoints(t *testing.T) {
	fv := &fakeView{}
	frames := &fakeFrames{snap: &host.FrameSnapshot{Frame: 1}}
	h := testServer(t, fv, frames, auth.Config{Enabled: true, Token: "secret"})

	// Control endpoint without token: 401.
	req := httptest.NewRequest("POST", "/api/v1/camera", strings.NewReader(`{"command":"zoom_in"}`))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", w.Code)
	}

	// Wrong token: 401.
	req = httptest.NewRequest("POST", "/api/v1/camera", strings.NewReader(`{"command":"zoom_in"}`))
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token status = %d, want 401", w.Code)
	}

	// Correct token: accepted.
	req = httptest.NewRequest("POST", "/api/v1/camera", strings.NewReader(`{"command":"zoom_in"}`))
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusAccepted {
		t.Errorf("correct token status = %d, want 202", w.Code)
	}

	// Read endpoints stay public.
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/scene", nil))
	if w.Code != http.StatusOK {
		t.Errorf("scene read status = %d, want 200", w.Code)
	}
}

func TestStaticAssets(t *testing.T) {
	fv := &fakeView{}
	frames := &fakeFrames{snap: &host.FrameSnapshot{Frame: 1}}
	h := testServer(t, fv, frames, auth.Config{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/satellite.svg", nil))
	if w.Code != http.StatusOK {
		t.Errorf("asset status = %d, want 200", w.Code)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if w.Code != http.StatusOK {
		t.Errorf("index status = %d, want 200", w.Code)
	}
}
