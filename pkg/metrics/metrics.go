// Package metrics holds the Prometheus collectors of the service.
// All methods are safe to call on a nil *Metrics, which records nothing.
package metrics

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups every collector exported by the service.
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dbQueryDuration *prometheus.HistogramVec
	dbQueryErrors   *prometheus.CounterVec
	dbConnections   *prometheus.GaugeVec

	bookingsTotal      *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
	hoursCacheLookups  *prometheus.CounterVec
	txRetriesTotal     prometheus.Counter
}

// New registers the collectors in the default Prometheus registry.
func New(serviceName string) *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, serviceName)
}

// NewWithRegistry registers the collectors in reg.
func NewWithRegistry(reg prometheus.Registerer, serviceName string) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests.",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),

		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency.",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),

		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query latency.",
			ConstLabels: constLabels,
			Buckets:     []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),

		dbQueryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_query_errors_total",
			Help:        "Database queries that returned an error.",
			ConstLabels: constLabels,
		}, []string{"operation"}),

		dbConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_connections",
			Help:        "Database pool connections by state.",
			ConstLabels: constLabels,
		}, []string{"state"}),

		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "bookings_total",
			Help:        "Booking attempts by outcome.",
			ConstLabels: constLabels,
		}, []string{"mode", "outcome"}),

		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "notifications_relayed_total",
			Help:        "Outbox notifications handed to the broker by result.",
			ConstLabels: constLabels,
		}, []string{"result"}),

		hoursCacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "canonical_hours_cache_lookups_total",
			Help:        "Canonical hours cache lookups by result.",
			ConstLabels: constLabels,
		}, []string{"result"}),

		txRetriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "db_tx_retries_total",
			Help:        "Serializable transactions retried after a serialization failure.",
			ConstLabels: constLabels,
		}),
	}

	reg.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.dbQueryDuration,
		m.dbQueryErrors,
		m.dbConnections,
		m.bookingsTotal,
		m.notificationsTotal,
		m.hoursCacheLookups,
		m.txRetriesTotal,
	)

	return m
}

func (m *Metrics) ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) ObserveDBQuery(operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(operation).Observe(d.Seconds())
	if err != nil {
		m.dbQueryErrors.WithLabelValues(operation).Inc()
	}
}

func (m *Metrics) SetDBStats(stats sql.DBStats) {
	if m == nil {
		return
	}
	m.dbConnections.WithLabelValues("open").Set(float64(stats.OpenConnections))
	m.dbConnections.WithLabelValues("in_use").Set(float64(stats.InUse))
	m.dbConnections.WithLabelValues("idle").Set(float64(stats.Idle))
}

// IncBooking counts a booking attempt, e.g. ("individual", "created") or ("group", "conflict").
func (m *Metrics) IncBooking(mode, outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(mode, outcome).Inc()
}

func (m *Metrics) IncNotificationRelayed(result string) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) IncHoursCache(result string) {
	if m == nil {
		return
	}
	m.hoursCacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) IncTxRetry() {
	if m == nil {
		return
	}
	m.txRetriesTotal.Inc()
}
