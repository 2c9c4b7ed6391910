// Package stream implements Server-Sent Events (SSE) streaming of scene
// frame snapshots. Clients connect via GET /api/v1/scene/stream and
// receive the composed scene graph plus camera pose at a bounded rate.
//
// SSE message format:
//
//	data: {"type":"frame","t":"2026-08-30T12:00:00Z","frame":1234,...}\n\n
//
// First message is always metadata:
//
//	data: {"type":"metadata","session":"<uuid>","globe_radius":100}\n\n
//
// Keep-alive comments (:\n\n) are sent every KeepaliveInterval to prevent
// timeout. Frames are deduplicated by frame counter: a tick that finds no
// newer frame sends nothing.
package stream

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/host"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/httputil"
	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/metrics"
)

// Source provides the latest published frame. Satisfied by *host.Globe.
type Source interface {
	Latest() *host.FrameSnapshot
	GlobeRadius() float64
}

// Config holds streaming configuration loaded from environment variables.
type Config struct {
	MaxConcurrentPerIP int           // Max concurrent streams per IP (default: 10).
	KeepaliveInterval  time.Duration // Keep-alive ping interval (default: 30s).
	TrustProxy         bool          // Honor X-Forwarded-For for rate limiting.
}

// Handler manages SSE streaming connections.
type Handler struct {
	source  Source
	config  Config
	limiter *streamLimiter
	logger  *slog.Logger
}

// NewHandler creates a new streaming handler.
func NewHandler(source Source, config Config, logger *slog.Logger) *Handler {
	return &Handler{
		source:  source,
		config:  config,
		limiter: newStreamLimiter(config.MaxConcurrentPerIP),
		logger:  logger,
	}
}

// HandleScene serves the SSE frame stream.
// GET /api/v1/scene/stream?fps=5
func (h *Handler) HandleScene(w http.ResponseWriter, r *http.Request) {
	fps := 5
	if v := r.URL.Query().Get("fps"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 30 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid fps parameter, must be 1-30"})
			return
		}
		fps = n
	}

	// Rate limiting: enforce concurrent stream limit per IP.
	ip := httputil.ClientIP(r, h.config.TrustProxy)
	if !h.limiter.acquire(ip) {
		metrics.IncStreamErrors("rate_limit")
		h.logger.Warn("stream rate limit exceeded",
			"remote_ip", ip,
			"current_count", h.limiter.count(ip),
		)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]string{"error": "too many concurrent streams"})
		return
	}

	session := uuid.NewString()
	metrics.IncStreamConnections("connect")
	metrics.IncStreamsActive()

	startTime := time.Now()
	h.logger.Info("stream connected",
		"remote_ip", ip,
		"session", session,
		"user_agent", r.Header.Get("User-Agent"),
		"fps", fps,
	)

	// Cleanup on disconnect: release rate limit slot and update metrics.
	defer func() {
		h.limiter.release(ip)
		metrics.IncStreamConnections("disconnect")
		metrics.DecStreamsActive()
		h.logger.Info("stream disconnected",
			"remote_ip", ip,
			"session", session,
			"duration_seconds", int(time.Since(startTime).Seconds()),
		)
	}()

	// Verify flusher support (required for SSE).
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "streaming not supported"})
		return
	}

	// Set SSE response headers.
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering.
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// Use ResponseController to manage write deadlines for long-lived SSE.
	// Clear the server's default WriteTimeout for this connection.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		h.logger.Debug("could not clear write deadline", "error", err)
	}

	c := &client{
		w:       w,
		flusher: flusher,
		rc:      rc,
		ip:      ip,
		logger:  h.logger,
	}

	// Send jittered retry interval (3-7s) to prevent thundering-herd
	// reconnection storms when the server restarts.
	retryMs := 3000 + rand.Intn(4000)
	fmt.Fprintf(w, "retry: %d\n\n", retryMs)
	flusher.Flush()

	// Send metadata message (first message on every connection).
	meta := metadataMessage{
		Type:        "metadata",
		Session:     session,
		GlobeRadius: h.source.GlobeRadius(),
		FPS:         fps,
	}
	if err := c.sendJSON(meta); err != nil {
		metrics.IncStreamErrors("send_error")
		h.logger.Warn("stream send error (metadata)", "remote_ip", ip, "error", err)
		return
	}

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	keepaliveTicker := time.NewTicker(h.config.KeepaliveInterval)
	defer keepaliveTicker.Stop()

	ctx := r.Context()
	var lastFrame uint64

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			snap := h.source.Latest()
			if snap == nil || snap.Frame == lastFrame {
				continue
			}
			lastFrame = snap.Frame

			data, err := json.Marshal(frameMessage{Type: "frame", FrameSnapshot: snap})
			if err != nil {
				metrics.IncStreamErrors("marshal_error")
				h.logger.Warn("stream marshal error", "remote_ip", ip, "error", err)
				continue
			}
			if err := c.sendRaw(data); err != nil {
				metrics.IncStreamErrors("send_error")
				h.logger.Warn("stream send error", "remote_ip", ip, "error", err)
				return
			}

			// Reset keepalive since we just sent data.
			keepaliveTicker.Reset(h.config.KeepaliveInterval)

		case <-keepaliveTicker.C:
			if err := c.sendKeepalive(); err != nil {
				metrics.IncStreamErrors("send_error")
				h.logger.Warn("stream keepalive error", "remote_ip", ip, "error", err)
				return
			}
		}
	}
}

// SSE message payload types.

type metadataMessage struct {
	Type        string  `json:"type"`
	Session     string  `json:"session"`
	GlobeRadius float64 `json:"globe_radius"`
	FPS         int     `json:"fps"`
}

type frameMessage struct {
	Type string `json:"type"`
	*host.FrameSnapshot
}
