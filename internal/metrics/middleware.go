package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// Label values for requests that never reached a search handler.
const (
	labelNone    = "none"
	codeOK       = "ok"
	routeUnknown = "unknown"
)

var (
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docintel",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds by route and search mode",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route", "mode"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docintel",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, status, search mode and error code",
		},
		[]string{"method", "route", "status", "mode", "code"},
	)
)

var httpMetricsRegistered bool

// RegisterHTTPMetrics registers the HTTP middleware collectors. Must be called once from main.
func RegisterHTTPMetrics() {
	if httpMetricsRegistered {
		return
	}
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpRequestsTotal)
	httpMetricsRegistered = true
}

// requestTags is filled in by handlers while the request is in flight.
type requestTags struct {
	mode string
	code string
}

type tagsKey struct{}

// TagRequest records the search mode and outcome code (an error kind id, or
// "" for success) on the current request. No-op outside Middleware.
func TagRequest(ctx context.Context, mode, code string) {
	t, ok := ctx.Value(tagsKey{}).(*requestTags)
	if !ok {
		return
	}
	if mode != "" {
		t.mode = mode
	}
	if code != "" {
		t.code = code
	}
}

// Middleware records HTTP request duration and count, labelled by chi route
// pattern and by whatever the handler passed to TagRequest.
func Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			tags := &requestTags{mode: labelNone, code: codeOK}

			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), tagsKey{}, tags)))

			route := routeLabel(r)
			if ww.status >= http.StatusBadRequest && tags.code == codeOK {
				tags.code = "http_" + strconv.Itoa(ww.status)
			}

			httpRequestDuration.WithLabelValues(r.Method, route, tags.mode).Observe(time.Since(start).Seconds())
			httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(ww.status), tags.mode, tags.code).Inc()
		})
	}
}

// routeLabel uses the chi route pattern so ids in paths never become labels.
func routeLabel(r *http.Request) string {
	rc := chi.RouteContext(r.Context())
	if rc == nil || rc.RoutePattern() == "" {
		return routeUnknown
	}
	return rc.RoutePattern()
}

// statusWriter captures the response status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.wroteHeader = true
	}
	return w.ResponseWriter.Write(b) //nolint:wrapcheck // delegating to underlying ResponseWriter
}
