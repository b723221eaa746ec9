package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bnema/modctl/internal/mods"
)

const namespace = "modctl"

// Download results used as label values
const (
	ResultFinished  = "finished"
	ResultError     = "error"
	ResultCancelled = "cancelled"
)

// Metrics holds the collectors exposed on /metrics. It implements the
// download hooks so the installer can report into it directly.
type Metrics struct {
	registry      *prometheus.Registry
	downloads     *prometheus.CounterVec
	downloadBytes prometheus.Counter
}

// New registers the modctl collectors on a fresh registry. The registry
// and running gauges are computed from r on every scrape.
func New(r *mods.Registry) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		downloads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloads_total",
			Help:      "Total number of mod downloads by result",
		}, []string{"result"}),
		downloadBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "download_bytes_total",
			Help:      "Total number of archive bytes downloaded",
		}),
	}

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "registry_mods",
		Help:      "Number of mods in the registry",
	}, func() float64 {
		return float64(r.Len())
	})

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "running_mods",
		Help:      "Number of mods with a running process",
	}, func() float64 {
		return float64(len(r.Running()))
	})

	return m
}

// OnBytes counts downloaded bytes
func (m *Metrics) OnBytes(n int64) {
	if n > 0 {
		m.downloadBytes.Add(float64(n))
	}
}

// OnFinished counts a completed download
func (m *Metrics) OnFinished(int64) {
	m.downloads.WithLabelValues(ResultFinished).Inc()
}

// OnFailed counts a failed or cancelled download
func (m *Metrics) OnFailed(_ int64, cancelled bool) {
	if cancelled {
		m.downloads.WithLabelValues(ResultCancelled).Inc()
		return
	}
	m.downloads.WithLabelValues(ResultError).Inc()
}

// Gatherer exposes the underlying registry
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Handler serves the metrics in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
