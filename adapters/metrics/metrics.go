// Package metrics provides Prometheus metrics collection for homekeep.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/artpar/homekeep/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "homekeep"

// Collector holds all Prometheus metrics for homekeep.
type Collector struct {
	// Request metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	// Billing metrics
	BillingComputations *prometheus.CounterVec
	BillingDuration     *prometheus.HistogramVec
	LedgerRejections    prometheus.Counter
	PlatformFee         prometheus.Gauge

	// Subscription lifecycle
	SubscriptionsAcquired  *prometheus.CounterVec
	SubscriptionsCancelled prometheus.Counter
	SubscriptionsRemoved   prometheus.Counter

	// Config metrics
	ConfigReloads      prometheus.Counter
	ConfigReloadErrors prometheus.Counter
	ConfigLastReload   prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New creates a collector registered with the default Prometheus registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a collector registered with reg.
// Tests pass a fresh prometheus.NewRegistry() to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	c := &Collector{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "requests_in_flight",
				Help:      "Number of HTTP requests currently being processed",
			},
		),

		BillingComputations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "billing",
				Name:      "computations_total",
				Help:      "Total number of billing engine runs by kind",
			},
			[]string{"kind"},
		),
		BillingDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "billing",
				Name:      "computation_duration_seconds",
				Help:      "Billing engine run duration in seconds, ledger load included",
				Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"kind"},
		),
		LedgerRejections: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "billing",
				Name:      "ledger_rejections_total",
				Help:      "Total number of ledgers that failed validation",
			},
		),
		PlatformFee: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "billing",
				Name:      "platform_fee",
				Help:      "Currently configured monthly platform fee",
			},
		),

		SubscriptionsAcquired: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "subscriptions",
				Name:      "acquired_total",
				Help:      "Total number of subscriptions acquired by initial status",
			},
			[]string{"status"},
		),
		SubscriptionsCancelled: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "subscriptions",
				Name:      "cancelled_total",
				Help:      "Total number of subscriptions cancelled",
			},
		),
		SubscriptionsRemoved: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "subscriptions",
				Name:      "removed_total",
				Help:      "Total number of subscriptions deleted",
			},
		),

		ConfigReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reloads_total",
				Help:      "Total number of successful config reloads",
			},
		),
		ConfigReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reload_errors_total",
				Help:      "Total number of config reload errors",
			},
		),
		ConfigLastReload: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "config_last_reload_timestamp",
				Help:      "Unix timestamp of last successful config reload",
			},
		),
	}

	if g, ok := reg.(prometheus.Gatherer); ok {
		c.gatherer = g
	} else {
		c.gatherer = prometheus.DefaultGatherer
	}
	return c
}

// Handler serves the metrics of the registry the collector was created with.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// RecordComputation records one billing engine run.
func (c *Collector) RecordComputation(kind string, d time.Duration) {
	c.BillingComputations.WithLabelValues(kind).Inc()
	c.BillingDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// RecordLedgerRejected records a ledger that failed validation.
func (c *Collector) RecordLedgerRejected() {
	c.LedgerRejections.Inc()
}

// RecordAcquired records a new subscription.
func (c *Collector) RecordAcquired(status string) {
	c.SubscriptionsAcquired.WithLabelValues(status).Inc()
}

// RecordCancelled records a cancellation.
func (c *Collector) RecordCancelled() {
	c.SubscriptionsCancelled.Inc()
}

// RecordRemoved records a deletion.
func (c *Collector) RecordRemoved() {
	c.SubscriptionsRemoved.Inc()
}

// RecordRequest records a finished HTTP request.
func (c *Collector) RecordRequest(method, route string, status int, d time.Duration) {
	c.RequestsTotal.WithLabelValues(method, route, StatusClass(status)).Inc()
	c.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordReload records a config reload attempt.
func (c *Collector) RecordReload(err error, at time.Time) {
	if err != nil {
		c.ConfigReloadErrors.Inc()
		return
	}
	c.ConfigReloads.Inc()
	c.ConfigLastReload.Set(float64(at.Unix()))
}

// StatusClass buckets an HTTP status code as "2xx", "4xx" and so on.
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}

var _ ports.BillingRecorder = (*Collector)(nil)
