package engine

import (
	"strings"

	"github.com/sworddut/myclaw/internal/eventbus"
	"github.com/sworddut/myclaw/internal/session"
)

const fingerprintMaxChars = 220

// oscillationTracker holds the ring buffers from spec.md §4.3
// "Oscillation observation": recent call signatures and normalized
// tool-output fingerprints, each capped at oscillationRingCapacity.
type oscillationTracker struct {
	calls           []string
	outputs         []string
	noMutationSteps int
}

func newOscillationTracker() *oscillationTracker {
	return &oscillationTracker{}
}

// observe records the signatures and output fingerprints from one step
// and updates noMutationSteps. mutated indicates whether the step
// performed a successful mutation.
func (t *oscillationTracker) observe(signatures, fingerprints []string, mutated bool) {
	t.calls = ringAppend(t.calls, signatures, oscillationRingCapacity)
	t.outputs = ringAppend(t.outputs, fingerprints, oscillationRingCapacity)
	if mutated {
		t.noMutationSteps = 0
	} else {
		t.noMutationSteps++
	}
}

func ringAppend(buf []string, items []string, capacity int) []string {
	buf = append(buf, items...)
	if len(buf) > capacity {
		buf = buf[len(buf)-capacity:]
	}
	return buf
}

// metrics computes repeatRatio, noveltyRatio, and possibleOscillation
// exactly as spec.md §4.3 defines them.
func (t *oscillationTracker) metrics() (repeatRatio, noveltyRatio float64, possible bool) {
	if len(t.calls) > 0 {
		distinct := distinctCount(t.calls)
		repeatRatio = float64(len(t.calls)-distinct) / float64(len(t.calls))
	}
	if len(t.outputs) > 0 {
		nonEmpty := make([]string, 0, len(t.outputs))
		for _, o := range t.outputs {
			if o != "" {
				nonEmpty = append(nonEmpty, o)
			}
		}
		noveltyRatio = float64(distinctCount(nonEmpty)) / float64(len(t.outputs))
	}
	possible = repeatRatio >= 0.5 && noveltyRatio <= 0.5 && t.noMutationSteps >= 2
	return
}

func distinctCount(items []string) int {
	seen := make(map[string]struct{}, len(items))
	for _, s := range items {
		seen[s] = struct{}{}
	}
	return len(seen)
}

// fingerprint normalizes a tool output for novelty comparison:
// whitespace-collapsed and truncated to fingerprintMaxChars.
func fingerprint(output string) string {
	s := strings.Join(strings.Fields(output), " ")
	if len(s) > fingerprintMaxChars {
		s = s[:fingerprintMaxChars]
	}
	return s
}

// emitOscillation publishes the oscillation_observe event for the step
// just completed, using the engine's bus.
func (e *Engine) emitOscillation(sess *session.Session, step int, osc *oscillationTracker) {
	repeatRatio, noveltyRatio, possible := osc.metrics()
	e.Bus.Publish(eventbus.NewOscillationObserve(sess.ID, step, repeatRatio, noveltyRatio, osc.noMutationSteps, possible))
}
