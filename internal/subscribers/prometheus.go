package subscribers

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sworddut/myclaw/internal/eventbus"
)

// PrometheusSubscriber mirrors MetricsSubscriber's counters into
// client_golang gauges/counters scraped by the observability HTTP
// surface's /metrics endpoint (SPEC_FULL §4.5, §4.11). It does not
// replace MetricsSubscriber's JSONL file — both subscribers run off the
// same event stream independently.
type PrometheusSubscriber struct {
	toolCalls         *prometheus.CounterVec
	toolErrors        *prometheus.CounterVec
	turns             prometheus.Counter
	oscillationAlerts prometheus.Counter
	activeSessions    prometheus.Gauge

	mu       sync.Mutex
	sessions map[string]struct{}
}

// NewPrometheusSubscriber registers its collectors on reg (typically
// prometheus.NewRegistry(), not the global DefaultRegisterer, so multiple
// test instances don't collide).
func NewPrometheusSubscriber(reg prometheus.Registerer) *PrometheusSubscriber {
	p := &PrometheusSubscriber{
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "myclaw_tool_calls_total",
			Help: "Total tool calls dispatched by the turn engine.",
		}, []string{"tool"}),
		toolErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "myclaw_tool_errors_total",
			Help: "Total tool calls that returned ok=false.",
		}, []string{"tool"}),
		turns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "myclaw_turns_total",
			Help: "Total turns completed (final or max_steps).",
		}),
		oscillationAlerts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "myclaw_oscillation_alerts_total",
			Help: "Total oscillation_observe events with possibleOscillation=true.",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "myclaw_active_sessions",
			Help: "Number of sessions that have started but not ended.",
		}),
		sessions: make(map[string]struct{}),
	}
	reg.MustRegister(p.toolCalls, p.toolErrors, p.turns, p.oscillationAlerts, p.activeSessions)
	return p
}

func (p *PrometheusSubscriber) Handle(evt eventbus.Event) {
	switch e := evt.(type) {
	case eventbus.StartEvent:
		p.mu.Lock()
		if _, ok := p.sessions[e.Session()]; !ok {
			p.sessions[e.Session()] = struct{}{}
			p.activeSessions.Inc()
		}
		p.mu.Unlock()

	case eventbus.ToolCallEvent:
		p.toolCalls.WithLabelValues(e.Tool).Inc()

	case eventbus.ToolResultEvent:
		if !e.OK {
			p.toolErrors.WithLabelValues(e.Tool).Inc()
		}

	case eventbus.OscillationObserveEvent:
		if e.PossibleOscillation {
			p.oscillationAlerts.Inc()
		}

	case eventbus.FinalEvent:
		p.turns.Inc()

	case eventbus.MaxStepsEvent:
		p.turns.Inc()

	case eventbus.SessionEndEvent:
		p.mu.Lock()
		if _, ok := p.sessions[e.Session()]; ok {
			delete(p.sessions, e.Session())
			p.activeSessions.Dec()
		}
		p.mu.Unlock()
	}
}
