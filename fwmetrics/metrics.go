// Package fwmetrics exposes runtime counters over HTTP. The example
// corpus pulls in prometheus/client_golang for its query-side API
// (internal/metricdata/prometheus.go in the ClusterCockpit backend);
// this package is the natural exposition-side counterpart of the same
// dependency, instrumenting the register and port packages and serving
// them the way ClusterCockpit mounts its own routes with gorilla/mux.
package fwmetrics

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds every gauge/counter the runtime publishes.
type Collector struct {
	liveElements prometheus.Gauge
	livePorts    prometheus.Gauge
	publishes    *prometheus.CounterVec
	pulls        *prometheus.CounterVec
}

// NewCollector creates and registers a Collector against reg. Passing
// nil creates the metrics without registering them anywhere.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		liveElements: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "corefw",
			Name:      "live_elements",
			Help:      "Number of framework elements currently registered.",
		}),
		livePorts: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "corefw",
			Name:      "live_ports",
			Help:      "Number of ports currently registered.",
		}),
		publishes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "corefw",
			Name:      "port_publishes_total",
			Help:      "Number of values published, by port qualified name.",
		}, []string{"port"}),
		pulls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "corefw",
			Name:      "port_pulls_total",
			Help:      "Number of pulls served, by port qualified name.",
		}, []string{"port"}),
	}
}

// ObserveLiveCounts is suitable as a register.Register.OnChange callback.
func (c *Collector) ObserveLiveCounts(elements, ports int) {
	c.liveElements.Set(float64(elements))
	c.livePorts.Set(float64(ports))
}

// ObservePublish records one publish on the named port.
func (c *Collector) ObservePublish(qualifiedPortName string) {
	c.publishes.WithLabelValues(qualifiedPortName).Inc()
}

// ObservePull records one pull served by the named port.
func (c *Collector) ObservePull(qualifiedPortName string) {
	c.pulls.WithLabelValues(qualifiedPortName).Inc()
}

// NewRouter returns a mux.Router exposing /metrics and /healthz, the
// same MountRoutes-style wiring the teacher's pack-mate uses for its own
// HTTP surface.
func NewRouter(reg *prometheus.Registry) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	return r
}
