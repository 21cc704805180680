package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Load results.
const (
	LoadOK    = "ok"
	LoadError = "error"
	LoadStale = "stale"
)

// Collector owns the ccsd metrics and the registry they are exposed from.
//
// All methods are safe for concurrent use.
type Collector struct {
	registry *prometheus.Registry

	queries        *prometheus.CounterVec
	loads          *prometheus.CounterVec
	loadDuration   prometheus.Histogram
	configVersion  prometheus.Gauge
	updateRequired prometheus.Gauge
	announced      prometheus.Gauge
	quorate        prometheus.Gauge
}

// NewCollector creates and registers the metrics. A nil registry gets a
// fresh one so collectors never clash on the global default.
func NewCollector(namespace string, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if namespace == "" {
		namespace = "ccsd"
	}

	c := &Collector{
		registry: registry,
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "cluster.conf attribute queries by query and outcome",
		}, []string{"query", "outcome"}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_loads_total",
			Help:      "cluster.conf load attempts by result",
		}, []string{"result"}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "config_load_duration_seconds",
			Help:      "Time to read, parse and install cluster.conf",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
		}),
		configVersion: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "config_version",
			Help:      "config_version of the installed cluster.conf",
		}),
		updateRequired: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "update_required",
			Help:      "1 when a peer announced a newer cluster.conf",
		}),
		announced: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "announced_version",
			Help:      "Highest config_version announced by a peer",
		}),
		quorate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "quorate",
			Help:      "1 when this node is part of a quorate partition",
		}),
	}

	registry.MustRegister(
		c.queries,
		c.loads,
		c.loadDuration,
		c.configVersion,
		c.updateRequired,
		c.announced,
		c.quorate,
	)
	return c
}

// ObserveQuery counts one attribute query outcome.
func (c *Collector) ObserveQuery(query, outcome string) {
	c.queries.WithLabelValues(query, outcome).Inc()
}

// ObserveLoad counts a load attempt. On LoadOK the installed version gauge
// is updated and the duration recorded.
func (c *Collector) ObserveLoad(result string, version int, d time.Duration) {
	c.loads.WithLabelValues(result).Inc()
	if result != LoadOK {
		return
	}
	c.configVersion.Set(float64(version))
	c.loadDuration.Observe(d.Seconds())
}

// SetUpdateRequired reflects the update_required flag and announced version.
func (c *Collector) SetUpdateRequired(required bool, announced int) {
	c.updateRequired.Set(boolValue(required))
	c.announced.Set(float64(announced))
}

// SetQuorate reflects the quorate flag.
func (c *Collector) SetQuorate(quorate bool) {
	c.quorate.Set(boolValue(quorate))
}

// Registry returns the registry metrics are registered on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns the scrape endpoint for the collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
