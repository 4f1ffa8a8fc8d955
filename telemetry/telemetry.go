// Package telemetry wires the node runtime's metrics and tracing into
// OpenTelemetry, scoped to what the Node Controller and LocalProcess
// actually emit: process lifecycle counters, mailbox depth, and
// connection churn.
package telemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/wyrefab/distproc"

// version is the instrumentation version reported to the OTel SDK. It is a
// plain constant rather than a VCS-derived build stamp since this module
// has no release tooling of its own.
const version = "0.1.0"

// Version returns the instrumentation version string reported on every
// Tracer/Meter handle this package creates.
func Version() string { return version }

// Telemetry bundles the tracer and meter a Node uses to report its
// internal state. It is optional: a Node with a nil Telemetry simply does
// not record metrics.
type Telemetry struct {
	TracerProvider trace.TracerProvider
	Tracer         trace.Tracer

	MeterProvider metric.MeterProvider
	Meter         metric.Meter

	Metrics *NodeMetrics
}

// New builds a Telemetry from the global OTel providers, or the ones
// supplied via options, and eagerly registers NodeMetrics against the
// resulting Meter.
func New(options ...Option) (*Telemetry, error) {
	t := &Telemetry{
		TracerProvider: otel.GetTracerProvider(),
		MeterProvider:  otel.GetMeterProvider(),
	}
	for _, opt := range options {
		opt.Apply(t)
	}

	t.Tracer = t.TracerProvider.Tracer(instrumentationName, trace.WithInstrumentationVersion(version))
	t.Meter = t.MeterProvider.Meter(instrumentationName, metric.WithInstrumentationVersion(version))

	metrics, err := NewNodeMetrics(t.Meter)
	if err != nil {
		return nil, err
	}
	t.Metrics = metrics
	return t, nil
}
