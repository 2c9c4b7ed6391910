package httputil

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP resolves the remote address the scene-stream limiter keys on.
// When trustProxy is true, X-Forwarded-For (first entry) and X-Real-IP
// are consulted before RemoteAddr; leave it false unless the server
// actually sits behind a reverse proxy, or clients can forge their key.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			// Take the first (leftmost) IP — the original client.
			if i := strings.IndexByte(xff, ','); i > 0 {
				xff = xff[:i]
			}
			if ip := strings.TrimSpace(xff); ip != "" {
				return ip
			}
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
