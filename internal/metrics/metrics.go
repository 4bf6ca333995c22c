package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "staynest"

// Confirmation results
const (
	ConfirmPaid        = "paid"
	ConfirmAlreadyPaid = "already_paid"
	ConfirmOverlap     = "overlap"
	ConfirmNotFound    = "not_found"
	ConfirmUnverified  = "unverified"
	ConfirmError       = "error"
)

var (
	once sync.Once

	intentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_intents_total",
			Help:      "Payment intents handled, by path (created or updated).",
		},
		[]string{"path"},
	)

	overlapWarnings = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "overlap_warnings_total",
			Help:      "Intents created for dates that already overlap a confirmed booking.",
		},
	)

	confirmations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_confirmations_total",
			Help:      "Booking confirmations by result.",
		},
		[]string{"result"},
	)

	providerErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_provider_errors_total",
			Help:      "Failed calls to the payment provider, by operation.",
		},
		[]string{"op"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "route", "status"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(intentsTotal, overlapWarnings, confirmations, providerErrors, requestDuration)
	})
}

func IncIntent(path string) {
	intentsTotal.WithLabelValues(path).Inc()
}

func IncOverlapWarning() {
	overlapWarnings.Inc()
}

func IncConfirmation(result string) {
	confirmations.WithLabelValues(result).Inc()
}

func IncProviderError(op string) {
	providerErrors.WithLabelValues(op).Inc()
}

// Middleware records request latency. Unmatched routes share one label.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
