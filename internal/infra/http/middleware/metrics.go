package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	leadsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_ingested_total",
			Help: "Intake pipeline outcomes per sourcing run",
		},
		[]string{"outcome"}, // created | skipped | rejected | failed
	)

	channelFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sourcing_channel_failures_total",
			Help: "Source adapter runs that exhausted their retry budget",
		},
		[]string{"channel"},
	)

	emailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emails_sent_total",
			Help: "Outbound send attempts",
		},
		[]string{"result"}, // success | failure
	)

	complianceDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compliance_denials_total",
			Help: "Outbound actions blocked by the compliance gate",
		},
		[]string{"reason"},
	)

	inboundEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inbound_events_total",
			Help: "Webhook events accepted for processing",
		},
		[]string{"type"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}

func RecordIngestOutcome(outcome string, n int) {
	if n > 0 {
		leadsIngested.WithLabelValues(outcome).Add(float64(n))
	}
}

func RecordChannelFailure(channel string) {
	channelFailures.WithLabelValues(channel).Inc()
}

func RecordEmailSent(result string) {
	emailsSent.WithLabelValues(result).Inc()
}

func RecordComplianceDenial(reason string) {
	complianceDenials.WithLabelValues(reason).Inc()
}

func RecordInboundEvent(eventType string) {
	inboundEvents.WithLabelValues(eventType).Inc()
}
