package telemetry

import (
	"context"
	"testing"
)

func TestInitNoneExporterIsNoop(t *testing.T) {
	shutdown, err := Init("none", "")
	if err != nil {
		t.Fatalf("Init(none) failed: %v", err)
	}
	shutdown()
}

func TestInitEmptyExporterDefaultsToNone(t *testing.T) {
	shutdown, err := Init("", "")
	if err != nil {
		t.Fatalf("Init(\"\") failed: %v", err)
	}
	shutdown()
}

func TestInitUnsupportedExporterErrors(t *testing.T) {
	if _, err := Init("datadog", ""); err == nil {
		t.Fatalf("expected an error for an unsupported exporter name")
	}
}

func TestStartTurnProducesASpan(t *testing.T) {
	ctx, span := StartTurn(context.Background(), "s1")
	if ctx == nil || span == nil {
		t.Fatalf("expected a non-nil context and span")
	}
	span.End()
}
