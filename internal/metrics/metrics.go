package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "orders_created_total",
		Help:      "Total number of orders created.",
	})

	PaymentsCaptured = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "payments_captured_total",
		Help:      "Total number of captured payments by source.",
	}, []string{"source"})

	PaymentsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "payments_failed_total",
		Help:      "Total number of failed payments.",
	})

	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "webhook_events_total",
		Help:      "Total number of webhook deliveries by result.",
	}, []string{"result"})

	SignatureFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "signature_failures_total",
		Help:      "Total number of rejected payment or webhook signatures.",
	})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "status"})
)

// capture sources
const (
	SourceConfirm   = "confirm"
	SourceWebhook   = "webhook"
	SourceReconcile = "reconcile"
)

// Handler returns the /metrics endpoint handler
func Handler() http.Handler {
	return promhttp.Handler()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware observes request latency and status for every route
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		httpDuration.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Observe(time.Since(start).Seconds())
	})
}
