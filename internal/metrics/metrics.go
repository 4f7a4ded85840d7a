// Package metrics counts the work done by one generator run and writes the
// counters in the Prometheus textfile format.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "reggie"

// Recorder holds the counters of one run. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	pages    prometheus.Counter
	rows     prometheus.Counter
	concepts *prometheus.CounterVec // Concepts projected by variant
	lines    *prometheus.CounterVec // Resource lines written by variant
	skipped  *prometheus.CounterVec // Incomplete concepts by variant
	files    *prometheus.CounterVec // Resource files written by variant
	missing  *prometheus.CounterVec // Schemes without templates by variant
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		pages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "pages_fetched_total",
			Help:      "Total number of query pages fetched",
		}),

		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "rows_fetched_total",
			Help:      "Total number of query solutions fetched",
		}),

		concepts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generate",
			Name:      "concepts_projected_total",
			Help:      "Total number of concepts projected",
		}, []string{"variant"}),

		lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generate",
			Name:      "lines_written_total",
			Help:      "Total number of resource value lines written",
		}, []string{"variant"}),

		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generate",
			Name:      "concepts_skipped_total",
			Help:      "Total number of incomplete concepts skipped",
		}, []string{"variant"}),

		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generate",
			Name:      "files_written_total",
			Help:      "Total number of resource files written",
		}, []string{"variant"}),

		missing: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generate",
			Name:      "templates_missing_total",
			Help:      "Total number of schemes skipped for lack of a template",
		}, []string{"variant"}),
	}

	r.registry.MustRegister(r.pages, r.rows, r.concepts, r.lines, r.skipped, r.files, r.missing)
	return r
}

// Registry returns the registry holding the run's counters.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// PageFetched records one page fetch that returned rows solutions.
func (r *Recorder) PageFetched(rows int) {
	if r == nil {
		return
	}
	r.pages.Inc()
	r.rows.Add(float64(rows))
}

// ConceptProjected records one projected concept.
func (r *Recorder) ConceptProjected(variant string) {
	if r == nil {
		return
	}
	r.concepts.WithLabelValues(variant).Inc()
}

// LineWritten records one resource value line.
func (r *Recorder) LineWritten(variant string) {
	if r == nil {
		return
	}
	r.lines.WithLabelValues(variant).Inc()
}

// ConceptSkipped records one incomplete concept.
func (r *Recorder) ConceptSkipped(variant string) {
	if r == nil {
		return
	}
	r.skipped.WithLabelValues(variant).Inc()
}

// FileWritten records one closed resource file.
func (r *Recorder) FileWritten(variant string) {
	if r == nil {
		return
	}
	r.files.WithLabelValues(variant).Inc()
}

// TemplateMissing records one scheme skipped for lack of a template.
func (r *Recorder) TemplateMissing(variant string) {
	if r == nil {
		return
	}
	r.missing.WithLabelValues(variant).Inc()
}

// WriteTextfile writes every counter to path in the Prometheus text
// exposition format, for pickup by a node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
