// Package metrics is a small, backend-agnostic seam for recording
// operational metrics from the CSV decode/load tooling.
//
// It exposes a narrow Backend interface (counters and duration
// observations) behind a global, pluggable backend that defaults to a
// no-op, so instrumentation is always safe to call even when no metrics
// system is configured. Concrete systems (Prometheus Pushgateway, Datadog)
// live in subpackages and are installed via SetBackend; the rest of the
// codebase depends only on this package.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveDuration records a duration-style value in seconds.
	ObserveDuration(name string, value float64, labels Labels)
	// Flush pushes buffered metrics if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)      {}
func (nopBackend) ObserveDuration(string, float64, Labels) {}
func (nopBackend) Flush() error                            { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the current one.
func SetBackend(b Backend) {
	if b != nil {
		backend = b
	}
}

// Flush delegates to the current backend.
func Flush() error { return backend.Flush() }

// RecordStep measures one pipeline step: latency plus success/failure.
// Steps are coarse ("read", "infer", "load").
func RecordStep(step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"step": step, "status": status}
	backend.IncCounter("csvload_step_total", 1, lbls)
	backend.ObserveDuration("csvload_step_duration_seconds", d.Seconds(), lbls)
}

// RecordRows increments a record-level counter for the given kind. Kinds
// mirror the load summary: "decoded", "malformed", "inserted".
func RecordRows(kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("csvload_records_total", float64(delta), Labels{"kind": kind})
}

// RecordBatches increments the batch counter.
func RecordBatches(delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("csvload_batches_total", float64(delta), nil)
}
