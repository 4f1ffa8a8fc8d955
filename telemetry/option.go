package telemetry

import (
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Option applies a configuration choice to a Telemetry before its Tracer
// and Meter are derived.
type Option interface {
	Apply(t *Telemetry)
}

var _ Option = OptionFunc(nil)

// OptionFunc adapts a plain function to Option.
type OptionFunc func(*Telemetry)

func (f OptionFunc) Apply(t *Telemetry) { f(t) }

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return OptionFunc(func(t *Telemetry) {
		t.TracerProvider = provider
	})
}

// WithMeterProvider overrides the global meter provider.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return OptionFunc(func(t *Telemetry) {
		t.MeterProvider = provider
	})
}
