package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// BookingAttempts counts hearing booking requests by outcome:
	// booked, invalid_input, not_found, not_eligible, out_of_window,
	// in_the_past, conflict, persistence_failure.
	BookingAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "legalcase_hearing_booking_attempts_total",
		Help: "Hearing booking attempts partitioned by outcome.",
	}, []string{"outcome"})

	// CaseTransitions counts case lifecycle transitions by target state.
	CaseTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "legalcase_case_transitions_total",
		Help: "Case state transitions partitioned by target state.",
	}, []string{"state"})

	// NotificationsEmitted counts fire-and-forget notifications by result.
	NotificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "legalcase_notifications_emitted_total",
		Help: "Notifications emitted partitioned by result (ok, error).",
	}, []string{"result"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "legalcase_http_request_duration_seconds",
		Help:    "HTTP request latency by method and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})
)

// MetricsHandler exposes the Prometheus registry
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// MetricsMiddleware records request latency and status for every route
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		requestDuration.WithLabelValues(r.Method, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}
