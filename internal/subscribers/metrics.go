package subscribers

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sworddut/myclaw/internal/eventbus"
	"github.com/sworddut/myclaw/internal/logging"
)

// metricsState is the per-session counter set spec.md §4.5 describes.
type metricsState struct {
	StartedAt         time.Time
	LastEventAt       time.Time
	ToolCalls         int
	ToolErrors        int
	Turns             int
	OscillationAlerts int
}

// metricsRecord is one JSONL line written to metrics/<sessionId>.jsonl.
type metricsRecord struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"sessionId"`

	Tool       string `json:"tool,omitempty"`
	OK         *bool  `json:"ok,omitempty"`
	TextLength int    `json:"textLength,omitempty"`

	ToolCalls         int `json:"toolCalls,omitempty"`
	ToolErrors        int `json:"toolErrors,omitempty"`
	Turns             int `json:"turns,omitempty"`
	OscillationAlerts int `json:"oscillationAlerts,omitempty"`
}

// MetricsSubscriber maintains the per-session metrics counters from
// spec.md §4.5 and writes them as JSONL records to a sibling
// metrics/<sessionId>.jsonl file, serialized per session exactly like
// SessionLogSubscriber.
type MetricsSubscriber struct {
	homeDir string
	queues  *sessionQueues

	mu    sync.Mutex
	state map[string]*metricsState

	log *logging.Logger
}

// NewMetricsSubscriber builds a MetricsSubscriber writing under
// <homeDir>/metrics.
func NewMetricsSubscriber(homeDir string, log *logging.Logger) *MetricsSubscriber {
	if log == nil {
		log = logging.New("subscribers.metrics", nil, logging.Info)
	}
	return &MetricsSubscriber{
		homeDir: homeDir,
		queues:  newSessionQueues(),
		state:   make(map[string]*metricsState),
		log:     log,
	}
}

func (m *MetricsSubscriber) path(sessionID string) string {
	return filepath.Join(m.homeDir, "metrics", sessionID+".jsonl")
}

func (m *MetricsSubscriber) stateFor(sessionID string) *metricsState {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.state[sessionID]
	if !ok {
		st = &metricsState{}
		m.state[sessionID] = st
	}
	return st
}

// Handle is the eventbus.Handler this subscriber registers.
func (m *MetricsSubscriber) Handle(evt eventbus.Event) {
	switch e := evt.(type) {
	case eventbus.StartEvent:
		st := m.stateFor(e.Session())
		m.mu.Lock()
		st.StartedAt = e.At()
		st.LastEventAt = e.At()
		m.mu.Unlock()
		m.append(e.Session(), metricsRecord{Type: "metrics_start", Timestamp: e.At(), SessionID: e.Session()})

	case eventbus.ToolCallEvent:
		st := m.stateFor(e.Session())
		m.mu.Lock()
		st.ToolCalls++
		st.LastEventAt = e.At()
		m.mu.Unlock()
		m.append(e.Session(), metricsRecord{Type: "tool_call_metric", Timestamp: e.At(), SessionID: e.Session(), Tool: e.Tool})

	case eventbus.ToolResultEvent:
		st := m.stateFor(e.Session())
		ok := e.OK
		m.mu.Lock()
		if !e.OK {
			st.ToolErrors++
		}
		st.LastEventAt = e.At()
		m.mu.Unlock()
		m.append(e.Session(), metricsRecord{Type: "tool_result_metric", Timestamp: e.At(), SessionID: e.Session(), Tool: e.Tool, OK: &ok})

	case eventbus.ModelResponseEvent:
		st := m.stateFor(e.Session())
		m.mu.Lock()
		st.LastEventAt = e.At()
		m.mu.Unlock()
		m.append(e.Session(), metricsRecord{Type: "model_metric", Timestamp: e.At(), SessionID: e.Session(), TextLength: len(e.Text)})

	case eventbus.OscillationObserveEvent:
		st := m.stateFor(e.Session())
		m.mu.Lock()
		if e.PossibleOscillation {
			st.OscillationAlerts++
		}
		st.LastEventAt = e.At()
		m.mu.Unlock()
		m.append(e.Session(), metricsRecord{Type: "oscillation_metric", Timestamp: e.At(), SessionID: e.Session()})

	case eventbus.FinalEvent:
		st := m.stateFor(e.Session())
		m.mu.Lock()
		st.Turns++
		st.LastEventAt = e.At()
		m.mu.Unlock()

	case eventbus.MaxStepsEvent:
		st := m.stateFor(e.Session())
		m.mu.Lock()
		st.Turns++
		st.LastEventAt = e.At()
		m.mu.Unlock()

	case eventbus.SessionEndEvent:
		m.onEnd(e)
	}
}

func (m *MetricsSubscriber) onEnd(e eventbus.SessionEndEvent) {
	st := m.stateFor(e.Session())
	m.mu.Lock()
	snapshot := *st
	m.mu.Unlock()

	m.append(e.Session(), metricsRecord{
		Type:              "metrics_summary",
		Timestamp:         e.At(),
		SessionID:         e.Session(),
		ToolCalls:         snapshot.ToolCalls,
		ToolErrors:        snapshot.ToolErrors,
		Turns:             snapshot.Turns,
		OscillationAlerts: snapshot.OscillationAlerts,
	})

	q := m.queues.get(e.Session())
	q.enqueue(func() {
		m.mu.Lock()
		delete(m.state, e.Session())
		m.mu.Unlock()
	})
}

func (m *MetricsSubscriber) append(sessionID string, rec metricsRecord) {
	path := m.path(sessionID)
	q := m.queues.get(sessionID)
	q.enqueue(func() {
		if err := appendJSONLine(path, rec); err != nil {
			m.log.Error("metrics write for %s: %v", sessionID, err)
		}
	})
}

func appendJSONLine(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open metrics file: %w", err)
	}
	defer f.Close()
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode metrics record: %w", err)
	}
	_, err = f.Write(append(encoded, '\n'))
	return err
}

// Flush awaits every pending metrics write across every session.
func (m *MetricsSubscriber) Flush() {
	m.queues.flushAll()
}
