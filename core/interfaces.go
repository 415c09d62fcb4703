// Package core holds the data model, error taxonomy, and ambient
// interfaces (Logger, Telemetry) shared by every other package in this
// module. It has no dependency on any other package here.
package core

import "context"

// Logger is the leveled, structured logging contract used throughout
// the module. Fields are opaque key/value pairs rendered by the
// concrete implementation (see telemetry.Logger).
type Logger interface {
	Trace(msg string, fields map[string]interface{})
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// NoOpLogger discards everything. It is the default when no logger is
// configured.
type NoOpLogger struct{}

func (NoOpLogger) Trace(string, map[string]interface{}) {}
func (NoOpLogger) Debug(string, map[string]interface{}) {}
func (NoOpLogger) Info(string, map[string]interface{})  {}
func (NoOpLogger) Warn(string, map[string]interface{})  {}
func (NoOpLogger) Error(string, map[string]interface{}) {}

// Span is one traced unit of work.
type Span interface {
	End()
	SetAttribute(key string, value interface{})
	RecordError(err error)
}

// Telemetry starts spans and records metrics. Both are best-effort: a
// failing or absent telemetry backend must never affect strategy
// outcomes.
type Telemetry interface {
	StartSpan(ctx context.Context, name string) (context.Context, Span)
	RecordMetric(name string, value float64, labels map[string]string)
}

type noOpSpan struct{}

func (noOpSpan) End()                                 {}
func (noOpSpan) SetAttribute(string, interface{})     {}
func (noOpSpan) RecordError(error)                    {}

// NoOpTelemetry discards spans and metrics. It is the default when no
// telemetry provider is configured.
type NoOpTelemetry struct{}

func (NoOpTelemetry) StartSpan(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, noOpSpan{}
}
func (NoOpTelemetry) RecordMetric(string, float64, map[string]string) {}
