// Package metrics expone contadores de operaciones del motor y el estado de reconciliación en Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

var _ inventory.MetricsRecorder = (*Recorder)(nil)

// Recorder implementa inventory.MetricsRecorder y observa el Summary de reconciliación.
type Recorder struct {
	registry    *prometheus.Registry
	operations  *prometheus.CounterVec
	failures    *prometheus.CounterVec
	pendingKeys prometheus.Gauge
	anomalyKeys prometheus.Gauge
	trackedKeys prometheus.Gauge
}

// New registra las métricas en un registro propio (más las de proceso y runtime de Go).
func New(namespace string) *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Operaciones del motor de inventario confirmadas o rechazadas.",
		}, []string{"operation", "result"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_failures_total",
			Help:      "Operaciones rechazadas por causa.",
		}, []string{"operation", "reason"}),
		pendingKeys: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reconciliation_pending_keys",
			Help:      "Llaves (bodega, producto) con mercancía pendiente por ubicar.",
		}),
		anomalyKeys: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reconciliation_anomaly_keys",
			Help:      "Llaves con stock físico mayor al contable.",
		}),
		trackedKeys: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reconciliation_tracked_keys",
			Help:      "Llaves con saldo contable o físico distinto de cero.",
		}),
	}
	reg.MustRegister(
		r.operations, r.failures, r.pendingKeys, r.anomalyKeys, r.trackedKeys,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Committed cuenta una operación confirmada.
func (r *Recorder) Committed(operation string) {
	r.operations.WithLabelValues(operation, "committed").Inc()
}

// Failed cuenta una operación rechazada.
func (r *Recorder) Failed(operation, reason string) {
	r.operations.WithLabelValues(operation, "failed").Inc()
	r.failures.WithLabelValues(operation, reason).Inc()
}

// ObserveSummary actualiza los gauges; se registra como suscriptor del servicio de reconciliación.
func (r *Recorder) ObserveSummary(s inventory.Summary) {
	r.pendingKeys.Set(float64(s.PendingKeys))
	r.anomalyKeys.Set(float64(s.AnomalyKeys))
	r.trackedKeys.Set(float64(s.TrackedKeys))
}

// Handler endpoint /metrics del registro propio.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry registro subyacente (tests, exportadores adicionales).
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
