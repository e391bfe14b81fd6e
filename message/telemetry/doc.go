// Package telemetry instruments mediators with OpenTelemetry traces and
// metrics.
//
//	tmpl, err := telemetry.Instrument("validate", tmpl,
//	    telemetry.WithTracerProvider(tp),
//	    telemetry.WithMeterProvider(mp),
//	)
//
// By default the global providers from go.opentelemetry.io/otel are used.
package telemetry
