// Package metrics exposes prometheus counters for chart computation and
// profile imports. A nil *Metrics is valid and records nothing.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ziwei/internal/chart"
)

const namespace = "ziwei"

type Metrics struct {
	registry *prometheus.Registry

	chartsComputed   *prometheus.CounterVec
	chartErrors      *prometheus.CounterVec
	chartDuration    prometheus.Histogram
	profilesImported *prometheus.CounterVec
	toolCalls        *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		chartsComputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "charts_computed_total",
			Help:      "Charts computed, by caller.",
		}, []string{"source"}),
		chartErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_errors_total",
			Help:      "Chart computations that failed, by reason.",
		}, []string{"reason"}),
		chartDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chart_duration_seconds",
			Help:      "Time spent computing a chart.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
		profilesImported: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profiles_imported_total",
			Help:      "Profile files processed by the importer, by outcome.",
		}, []string{"outcome"}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mcp_tool_calls_total",
			Help:      "MCP tool invocations, by tool and status.",
		}, []string{"tool", "status"}),
	}
	m.registry.MustRegister(
		m.chartsComputed,
		m.chartErrors,
		m.chartDuration,
		m.profilesImported,
		m.toolCalls,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveChart records one chart computation that started at start.
func (m *Metrics) ObserveChart(source string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.chartDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.chartErrors.WithLabelValues(ErrorReason(err)).Inc()
		return
	}
	m.chartsComputed.WithLabelValues(source).Inc()
}

func (m *Metrics) ObserveImport(outcome string) {
	if m == nil {
		return
	}
	m.profilesImported.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveToolCall(tool string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.toolCalls.WithLabelValues(tool, status).Inc()
}

// ErrorReason maps a chart error to a low-cardinality label.
func ErrorReason(err error) string {
	switch {
	case errors.Is(err, chart.ErrOutOfRangeDate):
		return "out_of_range"
	case errors.Is(err, chart.ErrInvalidBirthData):
		return "invalid_birth_data"
	case errors.Is(err, chart.ErrInvariant):
		return "invariant"
	default:
		return "other"
	}
}
