// Package metrics provides Prometheus metrics for field path resolution.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/artpar/fieldresolver/core/fieldpath"
	"github.com/artpar/fieldresolver/core/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fieldresolver"

// Outcome labels for ResolutionsTotal.
const (
	OutcomeResolved = "resolved"
	OutcomeFailed   = "failed"
)

// Collector holds all Prometheus metrics of the resolver service.
type Collector struct {
	// Resolution metrics
	ResolutionsTotal   *prometheus.CounterVec
	ResolutionFailures *prometheus.CounterVec
	ResolveDuration    *prometheus.HistogramVec

	// Request metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	// Catalog metrics
	CatalogReloads       prometheus.Counter
	CatalogReloadErrors  prometheus.Counter
	CatalogLastReload    prometheus.Gauge
	CatalogEntityTypes   prometheus.Gauge
	CatalogResourceTypes prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New creates a collector registered with the default Prometheus registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a collector with a custom registry.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	c := &Collector{
		ResolutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resolutions_total",
				Help:      "Total number of field path resolutions",
			},
			[]string{"entity_type", "outcome"},
		),
		ResolutionFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resolution_failures_total",
				Help:      "Total number of failed resolutions by error kind",
			},
			[]string{"kind"},
		),
		ResolveDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "resolve_duration_seconds",
				Help:      "Field path resolution duration in seconds",
				Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
			},
			[]string{"operation"},
		),
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
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
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
		CatalogReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_reloads_total",
				Help:      "Total number of successful catalog reloads",
			},
		),
		CatalogReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_reload_errors_total",
				Help:      "Total number of failed catalog reloads",
			},
		),
		CatalogLastReload: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_last_reload_timestamp",
				Help:      "Unix timestamp of last successful catalog load",
			},
		),
		CatalogEntityTypes: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_entity_types",
				Help:      "Number of entity types in the active catalog",
			},
		),
		CatalogResourceTypes: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_resource_types",
				Help:      "Number of (entity type, bundle) pairs in the active catalog",
			},
		),
	}

	if g, ok := reg.(prometheus.Gatherer); ok {
		c.gatherer = g
	}
	return c
}

// ObserveResolution records the outcome of one resolution.
func (c *Collector) ObserveResolution(operation, entityType string, err error, elapsed time.Duration) {
	c.ResolveDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	if err == nil {
		c.ResolutionsTotal.WithLabelValues(entityType, OutcomeResolved).Inc()
		return
	}
	c.ResolutionsTotal.WithLabelValues(entityType, OutcomeFailed).Inc()
	c.ResolutionFailures.WithLabelValues(failureKind(err)).Inc()
}

// RecordCatalog updates the catalog gauges after a successful load.
func (c *Collector) RecordCatalog(catalog *schema.Catalog, reload bool) {
	c.CatalogEntityTypes.Set(float64(len(catalog.EntityTypes())))
	c.CatalogResourceTypes.Set(float64(len(catalog.ResourceTypes())))
	c.CatalogLastReload.SetToCurrentTime()
	if reload {
		c.CatalogReloads.Inc()
	}
}

// RecordRequest records one finished HTTP request.
func (c *Collector) RecordRequest(method, route string, status int, elapsed time.Duration) {
	c.RequestsTotal.WithLabelValues(method, route, StatusClass(status)).Inc()
	c.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler returns the /metrics handler for the collector's registry.
func (c *Collector) Handler() http.Handler {
	if c.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// StatusClass reduces a status code to its class ("2xx", "4xx", ...).
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}

func failureKind(err error) string {
	if kind := fieldpath.KindOf(err); kind != 0 {
		return kind.String()
	}
	return "internal"
}
