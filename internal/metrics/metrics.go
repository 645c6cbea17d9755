// Package metrics exposes Prometheus instrumentation for the tracker.
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
			Name: "tracker_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tracker_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	pollCyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_poll_cycles_total",
			Help: "Poll cycles per loop and outcome.",
		},
		[]string{"loop", "status"},
	)

	flightsOverhead = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tracker_flights_overhead",
			Help: "Flights in the current landing snapshot.",
		},
	)

	historyInsertsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracker_history_inserts_total",
			Help: "Flights admitted to the history ledger.",
		},
	)

	alertsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tracker_alerts_active",
			Help: "Hazard areas currently under an active alert.",
		},
	)

	deliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_deliveries_total",
			Help: "Subscriber deliveries per channel and outcome.",
		},
		[]string{"channel", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpDurationSeconds,
		pollCyclesTotal,
		flightsOverhead,
		historyInsertsTotal,
		alertsActive,
		deliveriesTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordCycle counts one poll cycle for a loop ("flights" or
// "alerts") with status "ok" or "error".
func RecordCycle(loop, status string) {
	pollCyclesTotal.WithLabelValues(loop, status).Inc()
}

// SetFlightsOverhead records the size of the committed live snapshot.
func SetFlightsOverhead(n int) {
	flightsOverhead.Set(float64(n))
}

// RecordHistoryInsert counts one flight admitted to the ledger.
func RecordHistoryInsert() {
	historyInsertsTotal.Inc()
}

// SetAlertsActive records the number of active hazard areas.
func SetAlertsActive(n int) {
	alertsActive.Set(float64(n))
}

// RecordDelivery counts one subscriber delivery attempt outcome.
func RecordDelivery(channel, status string) {
	deliveriesTotal.WithLabelValues(channel, status).Inc()
}

// normalizeRoute collapses parameterized paths to one label so a
// scrape of many flight ids cannot blow up metric cardinality.
func normalizeRoute(path string) string {
	switch path {
	case "/", "/flights", "/flights/history", "/status", "/metrics", "/api/v1/subscribers":
		return path
	}
	if strings.HasPrefix(path, "/flights/") {
		return "/flights/{id}"
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
