package engine

import (
	"context"
	"testing"

	"github.com/sworddut/myclaw/internal/eventbus"
	"github.com/sworddut/myclaw/internal/interrupt"
	"github.com/sworddut/myclaw/internal/provider"
	"github.com/sworddut/myclaw/internal/session"
	"github.com/sworddut/myclaw/internal/tool"
	"github.com/sworddut/myclaw/internal/workspace"
)

func TestOscillationTrackerMetricsOnRepeatedNoOpCalls(t *testing.T) {
	osc := newOscillationTracker()
	for i := 0; i < oscillationRingCapacity; i++ {
		osc.observe([]string{"list_files:."}, []string{"a.txt\nb.txt"}, false)
	}

	repeatRatio, noveltyRatio, possible := osc.metrics()
	if repeatRatio != 5.0/6.0 {
		t.Fatalf("expected repeatRatio 5/6 for six identical signatures, got %v", repeatRatio)
	}
	if noveltyRatio != 1.0/6.0 {
		t.Fatalf("expected noveltyRatio 1/6 for six identical outputs, got %v", noveltyRatio)
	}
	if !possible {
		t.Fatalf("expected possibleOscillation=true, got repeatRatio=%v noveltyRatio=%v noMutationSteps=%d", repeatRatio, noveltyRatio, osc.noMutationSteps)
	}
}

func TestOscillationTrackerResetsNoMutationStepsOnMutation(t *testing.T) {
	osc := newOscillationTracker()
	osc.observe([]string{"list_files:."}, []string{"a.txt"}, false)
	osc.observe([]string{"list_files:."}, []string{"a.txt"}, false)
	if osc.noMutationSteps != 2 {
		t.Fatalf("expected noMutationSteps 2, got %d", osc.noMutationSteps)
	}
	osc.observe([]string{"write_file:a.txt"}, []string{"wrote a.txt"}, true)
	if osc.noMutationSteps != 0 {
		t.Fatalf("expected a mutation to reset noMutationSteps to 0, got %d", osc.noMutationSteps)
	}
}

func TestOscillationTrackerRingBufferCapsAtCapacity(t *testing.T) {
	osc := newOscillationTracker()
	for i := 0; i < oscillationRingCapacity+4; i++ {
		osc.observe([]string{"list_files:."}, []string{"a.txt"}, false)
	}
	if len(osc.calls) != oscillationRingCapacity {
		t.Fatalf("expected calls ring to cap at %d, got %d", oscillationRingCapacity, len(osc.calls))
	}
	if len(osc.outputs) != oscillationRingCapacity {
		t.Fatalf("expected outputs ring to cap at %d, got %d", oscillationRingCapacity, len(osc.outputs))
	}
}

// TestRunTurnSixIdenticalListFilesCallsObservesOscillation replays six
// identical list_files "." calls (followed by a final text response) and
// asserts at least one oscillation_observe event reports
// possibleOscillation=true.
func TestRunTurnSixIdenticalListFilesCallsObservesOscillation(t *testing.T) {
	var responses []provider.Response
	for i := 0; i < oscillationRingCapacity; i++ {
		responses = append(responses, provider.Response{ToolCalls: []tool.Call{
			{ID: "x", Tool: "list_files", Input: map[string]any{"path": "."}},
		}})
	}
	responses = append(responses, provider.Response{Text: "done exploring"})
	chat := &scriptedChat{responses: responses}

	ws, err := workspace.New(t.TempDir())
	if err != nil {
		t.Fatalf("workspace.New failed: %v", err)
	}
	registry := tool.NewRegistry()
	bus := eventbus.New(nil)
	interrupts := interrupt.NewRegistry[session.Message]()
	eng := New(chat, registry, ws, tool.DenyAllApprover{}, bus, interrupts, nil)
	sess := session.New("s1", ws.Root(), "/tmp/s1.jsonl", session.Runtime{MaxSteps: oscillationRingCapacity + 2, ContextWindowSize: 40}, "system prompt")

	var events []eventbus.OscillationObserveEvent
	eng.Bus.Subscribe(func(e eventbus.Event) {
		if oe, ok := e.(eventbus.OscillationObserveEvent); ok {
			events = append(events, oe)
		}
	})

	_, err = eng.RunTurn(context.Background(), sess, "list the workspace repeatedly")
	if err != nil {
		t.Fatalf("RunTurn failed: %v", err)
	}

	if len(events) == 0 {
		t.Fatalf("expected at least one oscillation_observe event")
	}
	found := false
	for _, e := range events {
		if e.PossibleOscillation {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("expected at least one oscillation_observe event with possibleOscillation=true, got %+v", events)
	}
}

// ensure fingerprint normalization doesn't affect novelty when outputs are
// whitespace-identical but differ only in formatting.
func TestFingerprintNormalizesWhitespace(t *testing.T) {
	if fingerprint("a.txt\nb.txt") != fingerprint("a.txt   b.txt") {
		t.Fatalf("expected whitespace-collapsed fingerprints to match")
	}
}
