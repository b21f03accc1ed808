package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "linkgraph"

var (
	// buildDuration measures graph construction from parsed contacts.
	buildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "graph",
		Name:      "build_duration_seconds",
		Help:      "Time to infer edges and build a graph",
		Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	// buildsTotal counts builds. Labels: status (ok, error)
	buildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "graph",
		Name:      "builds_total",
		Help:      "Total graph builds by outcome",
	}, []string{"status"})

	// graphSize tracks the current graph. Labels: kind (nodes, edges)
	graphSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "graph",
		Name:      "size",
		Help:      "Node and edge count of the current graph",
	}, []string{"kind"})

	// operationDuration measures engine operations. Labels: op, status
	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "operation_duration_seconds",
		Help:      "Latency of engine operations",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
	}, []string{"op", "status"})
)

// ObserveBuild records one build attempt.
func ObserveBuild(d time.Duration, nodes, edges int, err error) {
	if err != nil {
		buildsTotal.WithLabelValues("error").Inc()
		return
	}
	buildsTotal.WithLabelValues("ok").Inc()
	buildDuration.Observe(d.Seconds())
	graphSize.WithLabelValues("nodes").Set(float64(nodes))
	graphSize.WithLabelValues("edges").Set(float64(edges))
}

// ObserveOperation records the latency of a named operation.
func ObserveOperation(op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	operationDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
