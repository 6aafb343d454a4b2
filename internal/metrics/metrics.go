// Package metrics exposes shopfront's engine counters to Prometheus.
//
// A nil *Metrics is valid and records nothing, so services can be built
// without a registry in tests and one-shot CLI commands.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shopfront"

// Metrics holds every counter the engine records.
type Metrics struct {
	registry *prometheus.Registry

	cartMutations     *prometheus.CounterVec
	checkoutOutcomes  *prometheus.CounterVec
	catalogLoads      *prometheus.CounterVec
	suggestions       *prometheus.CounterVec
	storageErrors     *prometheus.CounterVec
	bridgeRepublishes *prometheus.CounterVec
	bridgeErrors      prometheus.Counter
}

// New registers the shopfront collectors on a fresh registry, together with
// the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		cartMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "mutations_total",
			Help:      "Cart writes by action and result",
		}, []string{"action", "result"}),
		checkoutOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "outcomes_total",
			Help:      "Checkout sessions by final outcome",
		}, []string{"outcome"}),
		catalogLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "loads_total",
			Help:      "Catalog loads by source",
		}, []string{"source"}),
		suggestions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "suggestion_runs_total",
			Help:      "Debounced suggestion computations by result",
		}, []string{"result"}),
		storageErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "errors_total",
			Help:      "Storage errors by operation and key",
		}, []string{"op", "key"}),
		bridgeRepublishes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "republished_total",
			Help:      "Foreign changes republished on the local bus",
		}, []string{"key"}),
		bridgeErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "poll_errors_total",
			Help:      "Failed sync polls",
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) CartMutation(action string, err error) {
	if m == nil {
		return
	}
	m.cartMutations.WithLabelValues(action, result(err)).Inc()
}

func (m *Metrics) CheckoutOutcome(outcome string) {
	if m == nil {
		return
	}
	m.checkoutOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) CatalogLoad(source string) {
	if m == nil {
		return
	}
	m.catalogLoads.WithLabelValues(source).Inc()
}

func (m *Metrics) SuggestionRun(result string) {
	if m == nil {
		return
	}
	m.suggestions.WithLabelValues(result).Inc()
}

func (m *Metrics) StorageError(op, key string) {
	if m == nil {
		return
	}
	m.storageErrors.WithLabelValues(op, key).Inc()
}

func (m *Metrics) Republished(key string) {
	if m == nil {
		return
	}
	m.bridgeRepublishes.WithLabelValues(key).Inc()
}

func (m *Metrics) SyncError() {
	if m == nil {
		return
	}
	m.bridgeErrors.Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
