// Package api wires the HTTP surface: the viewer UI, the scene snapshot
// and stream endpoints, the control endpoints, and the operational
// probes. Middleware order is metrics -> logging -> auth -> mux.
package api

import (
	"encoding/json"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/auth"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/camera"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/health"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/host"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/metrics"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/stream"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/view"
)

// SceneView is the engine surface the API depends on.
type SceneView interface {
	Status() view.Status
	EnqueueCamera(cmd camera.Command)
	SetView(satellite string, window, step time.Duration)
}

// Deps are the server's collaborators.
type Deps struct {
	View    SceneView
	Surface interface{ Latest() *host.FrameSnapshot }
	Stream  *stream.Handler
	Ready   func() bool
	WebFS   fs.FS
}

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a configured HTTP server.
func NewServer(addr string, logger *slog.Logger, authCfg auth.Config, deps Deps) *Server {
	mux := http.NewServeMux()

	// Register routes.
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("GET /readyz", health.Readyz(deps.Ready))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /api/v1/scene", handleScene(deps))
	mux.HandleFunc("GET /api/v1/scene/stream", deps.Stream.HandleScene)
	mux.HandleFunc("POST /api/v1/camera", handleCamera(deps.View, logger))
	mux.HandleFunc("POST /api/v1/view", handleView(deps.View, logger))
	mux.Handle("GET /", http.FileServerFS(deps.WebFS))

	// Build middleware chain: metrics -> logging -> auth -> mux.
	var handler http.Handler = mux
	handler = auth.Middleware(authCfg)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = metrics.Middleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

// HTTPServer returns the underlying *http.Server for external control (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// sceneResponse pairs the view status with the latest composed frame.
type sceneResponse struct {
	Status view.Status         `json:"status"`
	Frame  *host.FrameSnapshot `json:"frame,omitempty"`
}

// handleScene serves the one-shot scene snapshot.
// GET /api/v1/scene
func handleScene(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := sceneResponse{
			Status: deps.View.Status(),
			Frame:  deps.Surface.Latest(),
		}
		w.Header().Set("Content-Type", "application/json")
		if resp.Frame == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(resp)
	}
}

type cameraRequest struct {
	Command string `json:"command"`
}

// handleCamera enqueues one navigation command onto the frame loop.
// POST /api/v1/camera {"command":"rotate_left"}
func handleCamera(v SceneView, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cameraRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		cmd, err := camera.ParseCommand(req.Command)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		v.EnqueueCamera(cmd)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
	}
}

type viewRequest struct {
	Sat     string `json:"sat"`
	Minutes int    `json:"minutes"`
	StepSec int    `json:"step_sec"`
}

// handleView switches the tracked satellite and window.
// POST /api/v1/view {"sat":"Polytech_Universe-3","minutes":180,"step_sec":20}
func handleView(v SceneView, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req viewRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Sat == "" {
			writeError(w, http.StatusBadRequest, "sat is required")
			return
		}
		if req.Minutes < 0 || req.Minutes > 1440 {
			writeError(w, http.StatusBadRequest, "minutes must be 0-1440")
			return
		}
		if req.StepSec < 0 || req.StepSec > 3600 {
			writeError(w, http.StatusBadRequest, "step_sec must be 0-3600")
			return
		}
		v.SetView(req.Sat,
			time.Duration(req.Minutes)*time.Minute,
			time.Duration(req.StepSec)*time.Second,
		)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{"status": "accepted", "sat": req.Sat})
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// probePath returns true for health/readiness probe paths that should not log at INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

// Unwrap exposes the wrapped writer so http.ResponseController keeps
// working for SSE handlers behind this middleware.
func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}

func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			duration := time.Since(start)
			level := slog.LevelInfo
			if probePath(r.URL.Path) {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "request",
				"component", "api",
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", duration.Milliseconds(),
				"remote_ip", r.RemoteAddr,
			)
		})
	}
}
