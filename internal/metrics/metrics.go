// Package metrics exposes history activity as Prometheus collectors.
//
// Every Metrics value owns a private registry, so several sessions (or
// tests) can run side by side without clashing on global registration.
package metrics

import (
	"net/http"
	"time"

	"github.com/dshills/rewind/internal/history"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Discard reasons reported on rewind_history_discarded_entries_total.
const (
	ReasonTruncated = "truncated"
	ReasonEvicted   = "evicted"
	ReasonReset     = "reset"
)

// Metrics holds the collectors for one process.
type Metrics struct {
	registry *prometheus.Registry

	records   prometheus.Counter
	undos     prometheus.Counter
	redos     prometheus.Counter
	resets    prometheus.Counter
	discarded *prometheus.CounterVec

	applyErrors   prometheus.Counter
	applyDuration prometheus.Histogram

	undoDepth prometheus.Gauge
	redoDepth prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rewind_history_records_total",
			Help: "Total number of entries recorded",
		}),
		undos: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rewind_history_undos_total",
			Help: "Total number of undo steps taken",
		}),
		redos: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rewind_history_redos_total",
			Help: "Total number of redo steps taken",
		}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rewind_history_resets_total",
			Help: "Total number of history resets",
		}),
		discarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rewind_history_discarded_entries_total",
			Help: "Entries dropped from history, by reason",
		}, []string{"reason"}),
		applyErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rewind_patch_apply_errors_total",
			Help: "Patch sets that failed to apply",
		}),
		applyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rewind_patch_apply_duration_seconds",
			Help:    "Duration of patch set application",
			Buckets: []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		undoDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rewind_history_undo_depth",
			Help: "Undo steps currently available",
		}),
		redoDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rewind_history_redo_depth",
			Help: "Redo steps currently available",
		}),
	}

	reg.MustRegister(
		m.records, m.undos, m.redos, m.resets, m.discarded,
		m.applyErrors, m.applyDuration, m.undoDepth, m.redoDepth,
	)
	return m
}

// Registry returns the private registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveEvent updates counters and depth gauges from a history event.
// It has the history.Observer signature.
func (m *Metrics) ObserveEvent(ev history.Event) {
	switch ev.Kind {
	case history.EventRecorded:
		m.records.Inc()
	case history.EventUndone:
		m.undos.Inc()
	case history.EventRedone:
		m.redos.Inc()
	case history.EventReset:
		m.resets.Inc()
		m.discard(ReasonReset, ev.Discarded)
	case history.EventTruncated:
		m.discard(ReasonTruncated, ev.Discarded)
	case history.EventEvicted:
		m.discard(ReasonEvicted, ev.Discarded)
	}
	m.undoDepth.Set(float64(ev.UndoCount))
	m.redoDepth.Set(float64(ev.RedoCount))
}

// ObserveApply records one patch set application.
func (m *Metrics) ObserveApply(d time.Duration, err error) {
	m.applyDuration.Observe(d.Seconds())
	if err != nil {
		m.applyErrors.Inc()
	}
}

func (m *Metrics) discard(reason string, n int) {
	if n > 0 {
		m.discarded.WithLabelValues(reason).Add(float64(n))
	}
}
