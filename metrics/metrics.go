// Package metrics holds the Prometheus collectors of the blog.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const unmatchedRoute = "unmatched"

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route", "status"},
	)

	commentsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "blog_comments_created_total",
			Help: "Total number of comments created",
		},
	)

	postsSharedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "blog_posts_shared_total",
			Help: "Total number of posts recommended by email",
		},
	)

	searchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_searches_total",
			Help: "Total number of post searches",
		},
		[]string{"strategy"},
	)
)

type statusRecorder struct {
	http.ResponseWriter

	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

// Middleware records request count and latency by method, route and status.
// The route label is the matched ServeMux pattern, which keeps post ids out of
// the label values.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		start := time.Now()
		next.ServeHTTP(rec, r)
		duration := time.Since(start).Seconds()

		route := r.Pattern
		if route == "" {
			route = unmatchedRoute
		}

		status := strconv.Itoa(rec.status)
		httpRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route, status).Observe(duration)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func CommentCreated() {
	commentsCreatedTotal.Inc()
}

func PostShared() {
	postsSharedTotal.Inc()
}

func Searched(strategy string) {
	searchesTotal.WithLabelValues(strategy).Inc()
}
