package subscribers

import (
	"sync"

	"github.com/sworddut/myclaw/internal/eventbus"
	"github.com/sworddut/myclaw/internal/logging"
	"github.com/sworddut/myclaw/internal/persistence"
	"github.com/sworddut/myclaw/internal/session"
)

// SessionLogSubscriber appends the JSONL session_start/session_resume/
// session_end/message/summary records described in spec.md §4.5 and
// §4.6. Per-session writes are serialized by a serialQueue so lines
// never interleave; every write is best-effort — an I/O failure is
// logged and swallowed rather than propagated into the bus (spec.md §7
// category 5 "Subscriber error").
type SessionLogSubscriber struct {
	queues *sessionQueues
	logsMu sync.Mutex
	logs   map[string]*persistence.Log
	log    *logging.Logger
}

// NewSessionLogSubscriber builds a SessionLogSubscriber. log may be nil.
func NewSessionLogSubscriber(log *logging.Logger) *SessionLogSubscriber {
	if log == nil {
		log = logging.New("subscribers.sessionlog", nil, logging.Info)
	}
	return &SessionLogSubscriber{
		queues: newSessionQueues(),
		logs:   make(map[string]*persistence.Log),
		log:    log,
	}
}

// Handle is the eventbus.Handler this subscriber registers.
func (s *SessionLogSubscriber) Handle(evt eventbus.Event) {
	switch e := evt.(type) {
	case eventbus.StartEvent:
		s.onStart(e)
	case eventbus.SessionResumeEvent:
		s.enqueueAppend(e.Session(), func(l *persistence.Log) error { return l.AppendResume(e.Session()) })
	case eventbus.SessionEndEvent:
		s.onEnd(e)
	case eventbus.MessageEvent:
		s.enqueueAppend(e.Session(), func(l *persistence.Log) error {
			return l.AppendMessage(e.Session(), session.Message{
				Role:       session.Role(e.Role),
				Content:    e.Content,
				ToolCallID: e.ToolCallID,
				ToolName:   e.ToolName,
				Timestamp:  e.At(),
			})
		})
	case eventbus.SummaryEvent:
		s.enqueueAppend(e.Session(), func(l *persistence.Log) error {
			return l.AppendSummary(e.Session(), session.SummaryBlock{From: e.From, To: e.To, Content: e.Content, Timestamp: e.At()})
		})
	}
}

// Attach opens sessionID's existing log at logPath without writing a
// fresh session_start record, for a resumed session whose log already
// has one. Callers publish a SessionResumeEvent afterward so the resume
// itself is still recorded (spec.md §4.6).
func (s *SessionLogSubscriber) Attach(sessionID, logPath string) {
	l, err := persistence.Open(logPath)
	if err != nil {
		s.log.Error("reattach session log for %s: %v", sessionID, err)
		return
	}
	s.logsMu.Lock()
	s.logs[sessionID] = l
	s.logsMu.Unlock()
}

func (s *SessionLogSubscriber) onStart(e eventbus.StartEvent) {
	l, err := persistence.Open(e.LogPath)
	if err != nil {
		s.log.Error("open session log for %s: %v", e.Session(), err)
		return
	}
	s.logsMu.Lock()
	s.logs[e.Session()] = l
	s.logsMu.Unlock()

	q := s.queues.get(e.Session())
	q.enqueue(func() {
		if err := l.AppendStart(e.Session(), e.Workspace, e.LogPath); err != nil {
			s.log.Error("append session_start for %s: %v", e.Session(), err)
			return
		}
		if e.SystemPrompt != "" {
			if err := l.AppendMessage(e.Session(), session.Message{Role: session.RoleSystem, Content: e.SystemPrompt, Timestamp: e.At()}); err != nil {
				s.log.Error("append initial system message for %s: %v", e.Session(), err)
			}
		}
	})
}

func (s *SessionLogSubscriber) onEnd(e eventbus.SessionEndEvent) {
	s.enqueueAppend(e.Session(), func(l *persistence.Log) error { return l.AppendEnd(e.Session(), e.Reason) })
	// Teardown happens after the end record is queued, not before —
	// deleting the queue first would drop the in-flight write.
	q := s.queues.get(e.Session())
	q.enqueue(func() {
		s.logsMu.Lock()
		delete(s.logs, e.Session())
		s.logsMu.Unlock()
	})
}

func (s *SessionLogSubscriber) enqueueAppend(sessionID string, write func(*persistence.Log) error) {
	s.logsMu.Lock()
	l, ok := s.logs[sessionID]
	s.logsMu.Unlock()
	if !ok {
		return // no start record seen yet (e.g. handler attached mid-session)
	}
	q := s.queues.get(sessionID)
	q.enqueue(func() {
		if err := write(l); err != nil {
			s.log.Error("session log write for %s: %v", sessionID, err)
		}
	})
}

// Flush awaits every pending write across every session (spec.md §4.5
// "flush() awaits all pending writes").
func (s *SessionLogSubscriber) Flush() {
	s.queues.flushAll()
}
