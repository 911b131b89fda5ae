// Package telemetry wires an OpenTelemetry TracerProvider for the turn
// engine: one span per turn, with child spans per model request and per
// tool execution, tagged with sessionId/tool/workspaceVersion attributes
// (SPEC_FULL §4.12). The default exporter is "none", a no-op tracer with
// zero runtime cost.
//
// Grounded on the teacher's internal/observability/tracing.go
// TracerProvider, generalized from its fixed otlp/zipkin switch to also
// accept "jaeger" and "none", since SPEC_FULL's tracing.exporter knob
// names all three of the pack's available exporters.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "myclaw"

var tracer trace.Tracer = otel.Tracer(serviceName)

// Init configures the global tracer for exporter ("none", "otlp",
// "jaeger", or "zipkin") and returns a shutdown func that flushes and
// closes the exporter. Callers must call the returned func on process
// exit.
func Init(exporter, endpoint string) (func(), error) {
	if exporter == "" {
		exporter = "none"
	}
	if exporter == "none" {
		tracer = otel.Tracer(serviceName)
		return func() {}, nil
	}

	var spanExporter sdktrace.SpanExporter
	var err error
	switch exporter {
	case "otlp":
		ep := endpoint
		if ep == "" {
			ep = "localhost:4318"
		}
		spanExporter, err = otlptracehttp.New(context.Background(),
			otlptracehttp.WithEndpoint(ep),
			otlptracehttp.WithInsecure(),
		)
	case "jaeger":
		ep := endpoint
		if ep == "" {
			ep = "http://localhost:14268/api/traces"
		}
		spanExporter, err = jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(ep)))
	case "zipkin":
		ep := endpoint
		if ep == "" {
			ep = "http://localhost:9411/api/v2/spans"
		}
		spanExporter, err = zipkin.New(ep)
	default:
		return nil, fmt.Errorf("unsupported tracing exporter %q", exporter)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s exporter: %w", exporter, err)
	}

	res, err := resource.New(context.Background(), resource.WithAttributes(
		semconv.ServiceName(serviceName),
	))
	if err != nil {
		return nil, fmt.Errorf("build tracing resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spanExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	tracer = provider.Tracer(serviceName)

	return func() {
		_ = provider.Shutdown(context.Background())
	}, nil
}

// Span names used across the turn engine.
const (
	SpanTurn  = "myclaw.turn"
	SpanModel = "myclaw.model_request"
	SpanTool  = "myclaw.tool_execute"
)

// StartTurn starts a span covering one full Engine.RunTurn call.
func StartTurn(ctx context.Context, sessionID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, SpanTurn, trace.WithAttributes(attribute.String("myclaw.session_id", sessionID)))
}

// StartModelRequest starts a span covering one provider.Chat call.
func StartModelRequest(ctx context.Context, sessionID, model string, step int) (context.Context, trace.Span) {
	return tracer.Start(ctx, SpanModel, trace.WithAttributes(
		attribute.String("myclaw.session_id", sessionID),
		attribute.String("myclaw.model", model),
		attribute.Int("myclaw.step", step),
	))
}

// StartTool starts a span covering one tool Executor.Execute call.
func StartTool(ctx context.Context, sessionID, toolName string, workspaceVersion int) (context.Context, trace.Span) {
	return tracer.Start(ctx, SpanTool, trace.WithAttributes(
		attribute.String("myclaw.session_id", sessionID),
		attribute.String("myclaw.tool", toolName),
		attribute.Int("myclaw.workspace_version", workspaceVersion),
	))
}
