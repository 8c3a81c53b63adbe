package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rl1809/inventory/internal/port"
)

const namespace = "inventory"

// Metrics implements port.MetricsRecorder on a private prometheus registry.
type Metrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	loads      *prometheus.CounterVec
	skipped    *prometheus.CounterVec
	saves      *prometheus.CounterVec
	products   prometheus.Gauge
	units      prometheus.Gauge
	value      prometheus.Gauge
}

var _ port.MetricsRecorder = (*Metrics)(nil)

func NewMetrics(backend string) *Metrics {
	labels := prometheus.Labels{"backend": backend}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "operations_total",
			Help:        "Store operations by name and result.",
			ConstLabels: labels,
		}, []string{"op", "result"}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "loads_total",
			Help:        "Inventory loads by result.",
			ConstLabels: labels,
		}, []string{"result"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "load_skipped_entries_total",
			Help:        "Persisted entries dropped while loading, by reason.",
			ConstLabels: labels,
		}, []string{"reason"}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "saves_total",
			Help:        "Inventory saves by result.",
			ConstLabels: labels,
		}, []string{"result"}),
		products: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "products",
			Help:        "Distinct products in the inventory.",
			ConstLabels: labels,
		}),
		units: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "units",
			Help:        "Sum of product quantities.",
			ConstLabels: labels,
		}),
		value: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "value",
			Help:        "Total inventory value, rounded to cents.",
			ConstLabels: labels,
		}),
	}
	m.registry.MustRegister(m.operations, m.loads, m.skipped, m.saves, m.products, m.units, m.value)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveOperation(op string, err error) {
	m.operations.WithLabelValues(op, result(err)).Inc()
}

func (m *Metrics) ObserveLoad(report port.LoadReport, err error) {
	m.loads.WithLabelValues(result(err)).Inc()
	m.skipped.WithLabelValues("corrupted").Add(float64(report.Corrupted))
	m.skipped.WithLabelValues("duplicate").Add(float64(report.Duplicates))
}

func (m *Metrics) ObserveSave(err error) {
	m.saves.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) ObserveInventory(distinct, units int, value float64) {
	m.products.Set(float64(distinct))
	m.units.Set(float64(units))
	m.value.Set(value)
}

// WriteTextfile dumps the registry in the text exposition format, atomically,
// for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
