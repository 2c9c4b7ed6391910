package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spacepi_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spacepi_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	frameDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "spacepi_frame_duration_seconds",
			Help:    "Scene frame step duration in seconds.",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		},
	)

	sceneRebuildsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "spacepi_scene_rebuilds_total",
			Help: "Total overlay rebuilds from track snapshots.",
		},
	)

	trackFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spacepi_track_fetches_total",
			Help: "Total track fetch attempts by result.",
		},
		[]string{"result"},
	)

	staleResponsesDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "spacepi_stale_responses_dropped_total",
			Help: "Track fetch responses discarded because a newer request superseded them.",
		},
	)

	beamActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "spacepi_beam_active",
			Help: "Whether a beam rig is currently composed (0 or 1).",
		},
	)

	beamParticles = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "spacepi_beam_particles",
			Help: "Particle count of the live beam rig.",
		},
	)

	streamConnectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spacepi_stream_connections_total",
			Help: "Total SSE stream connection events.",
		},
		[]string{"event"},
	)

	streamsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "spacepi_streams_active",
			Help: "Currently connected SSE viewers.",
		},
	)

	streamMessagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "spacepi_stream_messages_total",
			Help: "Total SSE messages sent.",
		},
	)

	streamBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "spacepi_stream_bytes_total",
			Help: "Total SSE bytes sent.",
		},
	)

	streamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spacepi_stream_errors_total",
			Help: "Total SSE stream errors by reason.",
		},
		[]string{"reason"},
	)

	trackCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spacepi_track_cache_total",
			Help: "Track cache lookups by outcome (hit, miss, stale_hit).",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpDurationSeconds,
		frameDurationSeconds,
		sceneRebuildsTotal,
		trackFetchesTotal,
		staleResponsesDropped,
		beamActive,
		beamParticles,
		streamConnectionsTotal,
		streamsActive,
		streamMessagesTotal,
		streamBytesTotal,
		streamErrorsTotal,
		trackCacheTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFrameDuration records one frame step's processing time.
func ObserveFrameDuration(d time.Duration) {
	frameDurationSeconds.Observe(d.Seconds())
}

// IncSceneRebuilds counts one overlay rebuild.
func IncSceneRebuilds() {
	sceneRebuildsTotal.Inc()
}

// IncTrackFetches counts a fetch attempt; result is "ok" or "error".
func IncTrackFetches(result string) {
	trackFetchesTotal.WithLabelValues(result).Inc()
}

// IncStaleResponsesDropped counts a superseded fetch response.
func IncStaleResponsesDropped() {
	staleResponsesDropped.Inc()
}

// SetBeamActive publishes whether a beam rig is live.
func SetBeamActive(active bool) {
	if active {
		beamActive.Set(1)
	} else {
		beamActive.Set(0)
	}
}

// SetBeamParticles publishes the live rig's particle count.
func SetBeamParticles(n int) {
	beamParticles.Set(float64(n))
}

// IncStreamConnections counts a stream event ("connect" or "disconnect").
func IncStreamConnections(event string) {
	streamConnectionsTotal.WithLabelValues(event).Inc()
}

// IncStreamsActive increments the active viewer gauge.
func IncStreamsActive() {
	streamsActive.Inc()
}

// DecStreamsActive decrements the active viewer gauge.
func DecStreamsActive() {
	streamsActive.Dec()
}

// IncStreamMessages counts one sent SSE message.
func IncStreamMessages() {
	streamMessagesTotal.Inc()
}

// AddStreamBytes counts sent SSE payload bytes.
func AddStreamBytes(n int64) {
	streamBytesTotal.Add(float64(n))
}

// IncStreamErrors counts a stream error by reason.
// IncTrackCache counts one track cache lookup outcome.
func IncTrackCache(outcome string) {
	trackCacheTotal.WithLabelValues(outcome).Inc()
}

func IncStreamErrors(reason string) {
	streamErrorsTotal.WithLabelValues(reason).Inc()
}

// knownRoutes are the exact paths this server registers. Everything else
// collapses to "other" so scanners cannot blow up label cardinality.
var knownRoutes = map[string]bool{
	"/":                    true,
	"/healthz":             true,
	"/readyz":              true,
	"/metrics":             true,
	"/api/v1/scene":        true,
	"/api/v1/scene/stream": true,
	"/api/v1/camera":       true,
	"/api/v1/view":         true,
}

// assetPrefixes cover embedded frontend files served by name.
var assetPrefixes = []string{"/app.js", "/styles.css", "/satellite.svg"}

// normalizeRoute maps a request path to a bounded metric label.
func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	for _, p := range assetPrefixes {
		if strings.HasPrefix(path, p) {
			return "asset"
		}
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)
		route := normalizeRoute(r.URL.Path)

		httpRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(duration)
	})
}
