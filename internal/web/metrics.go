package web

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "odincal",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		},
		[]string{"route", "code"},
	)

	expansionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "odincal",
			Name:      "expansions_total",
			Help:      "Recurrence expansions computed (cache misses).",
		},
	)

	expandedOccurrences = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "odincal",
			Name:      "expanded_occurrences",
			Help:      "Occurrences in the most recent expansion window.",
		},
	)

	truncatedDefinitions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "odincal",
			Name:      "truncated_definitions",
			Help:      "Definitions that hit the per-definition occurrence cap in the most recent expansion.",
		},
	)
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument counts requests per matched mux pattern.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	})
}
