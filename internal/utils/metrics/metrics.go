package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Order metrics
	OrdersCreatedTotal     *prometheus.CounterVec
	OrderStatusTransitions *prometheus.CounterVec

	// Payment metrics
	PaymentsTotal       *prometheus.CounterVec
	PaymentAmountRubles *prometheus.HistogramVec
	InvoicesSentTotal   prometheus.Counter

	// Telegram metrics
	BotAPICallsTotal   *prometheus.CounterVec
	BotAPICallDuration *prometheus.HistogramVec
	BotUpdatesTotal    *prometheus.CounterVec

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "frozenfood"
	}

	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Number of HTTP requests currently being served",
			},
		),
		OrdersCreatedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "orders",
				Name:      "created_total",
				Help:      "Total number of orders created",
			},
			[]string{"payment_method", "delivery_type"},
		),
		OrderStatusTransitions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "orders",
				Name:      "status_transitions_total",
				Help:      "Total number of order status transitions",
			},
			[]string{"from", "to"},
		),
		PaymentsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "payments",
				Name:      "total",
				Help:      "Total number of payments by method and outcome",
			},
			[]string{"method", "status"},
		),
		PaymentAmountRubles: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "payments",
				Name:      "amount_rubles",
				Help:      "Payment amounts in rubles",
				Buckets:   []float64{500, 1000, 1500, 2500, 5000, 10000, 25000},
			},
			[]string{"method"},
		),
		InvoicesSentTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "payments",
				Name:      "invoices_sent_total",
				Help:      "Total number of Telegram invoices sent",
			},
		),
		BotAPICallsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "bot",
				Name:      "api_calls_total",
				Help:      "Total number of Telegram Bot API calls",
			},
			[]string{"method", "outcome"},
		),
		BotAPICallDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "bot",
				Name:      "api_call_duration_seconds",
				Help:      "Telegram Bot API call duration in seconds",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method"},
		),
		BotUpdatesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "bot",
				Name:      "updates_total",
				Help:      "Total number of Telegram updates processed",
			},
			[]string{"type"},
		),
		CacheHitsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "hits_total",
				Help:      "Total number of cache hits",
			},
			[]string{"cache"},
		),
		CacheMissesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "misses_total",
				Help:      "Total number of cache misses",
			},
			[]string{"cache"},
		),
	}
}

// ObserveHTTPRequest records an HTTP request observation.
func (m *Metrics) ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveBotAPICall records a Telegram Bot API call observation.
func (m *Metrics) ObserveBotAPICall(method, outcome string, duration time.Duration) {
	m.BotAPICallsTotal.WithLabelValues(method, outcome).Inc()
	m.BotAPICallDuration.WithLabelValues(method).Observe(duration.Seconds())
}
