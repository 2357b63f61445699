// Package promadapters provides a Prometheus implementation of ledger.MetricsCollector.
package promadapters

import (
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const helpText = "lending ledger metric "

// MetricsCollector implements ledger.MetricsCollector with Prometheus collectors.
// It maps the interface onto Prometheus instruments created on demand:
//   - RecordDuration -> HistogramVec (observed in seconds)
//   - IncrementCounter -> CounterVec
//   - RecordValue -> GaugeVec
//
// The label names of an instrument are fixed by its first use. Later calls with a
// different label set for the same metric name are dropped.
type MetricsCollector struct {
	registerer prometheus.Registerer

	mu         sync.Mutex
	histograms map[string]*prometheus.HistogramVec
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
}

// NewMetricsCollector creates a collector that registers its instruments with registerer.
// Pass prometheus.DefaultRegisterer to expose them on the default promhttp handler.
func NewMetricsCollector(registerer prometheus.Registerer) *MetricsCollector {
	return &MetricsCollector{
		registerer: registerer,
		histograms: make(map[string]*prometheus.HistogramVec),
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
	}
}

// RecordDuration observes duration in seconds on a histogram.
func (m *MetricsCollector) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	histogram := m.getOrCreateHistogram(metric, labels)
	if histogram == nil {
		return
	}

	observer, err := histogram.GetMetricWith(labels)
	if err != nil {
		return
	}

	observer.Observe(duration.Seconds())
}

// IncrementCounter adds one to a counter.
func (m *MetricsCollector) IncrementCounter(metric string, labels map[string]string) {
	counter := m.getOrCreateCounter(metric, labels)
	if counter == nil {
		return
	}

	c, err := counter.GetMetricWith(labels)
	if err != nil {
		return
	}

	c.Inc()
}

// RecordValue sets a gauge to value.
func (m *MetricsCollector) RecordValue(metric string, value float64, labels map[string]string) {
	gauge := m.getOrCreateGauge(metric, labels)
	if gauge == nil {
		return
	}

	g, err := gauge.GetMetricWith(labels)
	if err != nil {
		return
	}

	g.Set(value)
}

func (m *MetricsCollector) getOrCreateHistogram(name string, labels map[string]string) *prometheus.HistogramVec {
	m.mu.Lock()
	defer m.mu.Unlock()

	if histogram, exists := m.histograms[name]; exists {
		return histogram
	}

	histogram := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: name, Help: helpText + name, Buckets: prometheus.DefBuckets},
		labelNames(labels),
	)
	if !m.register(histogram) {
		return nil
	}

	m.histograms[name] = histogram

	return histogram
}

func (m *MetricsCollector) getOrCreateCounter(name string, labels map[string]string) *prometheus.CounterVec {
	m.mu.Lock()
	defer m.mu.Unlock()

	if counter, exists := m.counters[name]; exists {
		return counter
	}

	counter := prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: name, Help: helpText + name},
		labelNames(labels),
	)
	if !m.register(counter) {
		return nil
	}

	m.counters[name] = counter

	return counter
}

func (m *MetricsCollector) getOrCreateGauge(name string, labels map[string]string) *prometheus.GaugeVec {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gauge, exists := m.gauges[name]; exists {
		return gauge
	}

	gauge := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: name, Help: helpText + name},
		labelNames(labels),
	)
	if !m.register(gauge) {
		return nil
	}

	m.gauges[name] = gauge

	return gauge
}

// register returns false if the registerer rejects the collector, e.g. for an invalid name.
func (m *MetricsCollector) register(collector prometheus.Collector) bool {
	if m.registerer == nil {
		return true
	}

	return m.registerer.Register(collector) == nil
}

func labelNames(labels map[string]string) []string {
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
