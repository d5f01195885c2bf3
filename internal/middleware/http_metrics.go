package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// normalizePath converts paths with dynamic segments to route patterns to prevent
// cardinality explosion in metrics. This maps paths like /payments/status/REF123
// to /payments/status/{reference}.
func normalizePath(path string) string {
	// Exact matches for static routes (no normalization needed)
	staticRoutes := map[string]bool{
		"/":                      true,
		"/api/payments/initiate": true,
		"/payments/webhook":      true,
		"/api/payment":           true,
		"/api/movies":            true,
		"/api/creators":          true,
		"/api/purchases":         true,
		"/api/live/token":        true,
		"/api/live/rooms":        true,
		"/health":                true,
		"/ready":                 true,
		"/metrics":               true,
	}

	if staticRoutes[path] {
		return path
	}

	// /payments/status/{reference}
	if strings.HasPrefix(path, "/payments/status/") {
		return "/payments/status/{reference}"
	}

	// /api/movies/{id}
	if strings.HasPrefix(path, "/api/movies/") {
		parts := strings.Split(path, "/")
		if len(parts) == 4 && parts[3] != "" {
			return "/api/movies/{id}"
		}
	}

	// /api/creators/{id} and /api/creators/{id}/movies
	if strings.HasPrefix(path, "/api/creators/") {
		parts := strings.Split(path, "/")
		if len(parts) == 5 && parts[4] == "movies" {
			return "/api/creators/{id}/movies"
		}
		if len(parts) == 4 && parts[3] != "" {
			return "/api/creators/{id}"
		}
	}

	// /api/purchases/{reference}
	if strings.HasPrefix(path, "/api/purchases/") {
		parts := strings.Split(path, "/")
		if len(parts) == 4 && parts[3] != "" {
			return "/api/purchases/{reference}"
		}
	}

	// /api/live/rooms/{name}
	if strings.HasPrefix(path, "/api/live/rooms/") {
		parts := strings.Split(path, "/")
		if len(parts) == 5 && parts[4] != "" {
			return "/api/live/rooms/{name}"
		}
	}

	// Fallback: return as-is for unknown patterns so new routes still
	// show up in metrics.
	return path
}

// metricsResponseWriter wraps http.ResponseWriter to capture status code and response size.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	size        int64
	wroteHeader bool
}

// WriteHeader captures the status code before writing it.
func (mrw *metricsResponseWriter) WriteHeader(code int) {
	if mrw.wroteHeader {
		return
	}
	mrw.statusCode = code
	mrw.wroteHeader = true
	mrw.ResponseWriter.WriteHeader(code)
}

// Write captures the response size and writes the data.
func (mrw *metricsResponseWriter) Write(b []byte) (int, error) {
	n, err := mrw.ResponseWriter.Write(b)
	mrw.size += int64(n)
	return n, err
}

// setContext forwards handler-pushed context to the wrapped writer, so error
// codes still reach the logging middleware when the metrics wrapper sits
// between it and the handler.
func (mrw *metricsResponseWriter) setContext(ctx context.Context) {
	if carrier, ok := mrw.ResponseWriter.(contextCarrier); ok {
		carrier.setContext(ctx)
	}
}

// newMetricsResponseWriter creates a new metricsResponseWriter with default 200 status.
func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

// HTTPMetrics is a middleware that records HTTP request metrics.
// It captures duration, request/response sizes, and request counts.
// Health check endpoints (/health, /ready) are excluded from metrics to avoid cardinality issues.
func HTTPMetrics(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" || r.URL.Path == "/ready" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()

			mrw := newMetricsResponseWriter(w)

			requestSize := int64(0)
			if contentLength := r.Header.Get("Content-Length"); contentLength != "" {
				if size, err := strconv.ParseInt(contentLength, 10, 64); err == nil {
					requestSize = size
				}
			}

			next.ServeHTTP(mrw, r)

			duration := time.Since(start).Seconds()
			normalizedPath := normalizePath(r.URL.Path)

			metrics.ObserveHTTPRequest(
				r.Method,
				normalizedPath,
				strconv.Itoa(mrw.statusCode),
				duration,
				requestSize,
				mrw.size,
			)
		})
	}
}
