package subscribers

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sworddut/myclaw/internal/eventbus"
	"github.com/sworddut/myclaw/internal/logging"
)

const clientOutboxCapacity = 64

// wsClient is one connected /events websocket client, scoped to a single
// session id.
type wsClient struct {
	conn    *websocket.Conn
	outbox  chan []byte
	dropped int
}

// EventStreamSubscriber fans every AgentEvent out to connected websocket
// clients on the observability HTTP surface's /events endpoint
// (SPEC_FULL §4.5, §4.11). A slow or absent client never blocks
// publication: each client owns a bounded outbox channel, and a full
// channel causes the frame to be dropped (counted) rather than blocking
// the writer goroutine or the publisher.
type EventStreamSubscriber struct {
	mu      sync.Mutex
	clients map[string]map[*wsClient]struct{} // sessionID -> client set
	log     *logging.Logger
}

func NewEventStreamSubscriber(log *logging.Logger) *EventStreamSubscriber {
	if log == nil {
		log = logging.New("subscribers.eventstream", nil, logging.Info)
	}
	return &EventStreamSubscriber{
		clients: make(map[string]map[*wsClient]struct{}),
		log:     log,
	}
}

// Register attaches conn to sessionID's fan-out set and starts its writer
// goroutine. The returned unregister func must be called when the
// connection closes (typically deferred by the HTTP handler).
func (s *EventStreamSubscriber) Register(sessionID string, conn *websocket.Conn) (unregister func()) {
	c := &wsClient{conn: conn, outbox: make(chan []byte, clientOutboxCapacity)}

	s.mu.Lock()
	set, ok := s.clients[sessionID]
	if !ok {
		set = make(map[*wsClient]struct{})
		s.clients[sessionID] = set
	}
	set[c] = struct{}{}
	s.mu.Unlock()

	done := make(chan struct{})
	go s.writeLoop(c, done)

	return func() {
		close(done)
		s.mu.Lock()
		if set, ok := s.clients[sessionID]; ok {
			delete(set, c)
			if len(set) == 0 {
				delete(s.clients, sessionID)
			}
		}
		s.mu.Unlock()
		_ = c.conn.Close()
	}
}

func (s *EventStreamSubscriber) writeLoop(c *wsClient, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case frame := <-c.outbox:
			c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		}
	}
}

type envelope struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId"`
	At        time.Time   `json:"at"`
	Event     interface{} `json:"event"`
}

func (s *EventStreamSubscriber) Handle(evt eventbus.Event) {
	s.mu.Lock()
	set := s.clients[evt.Session()]
	if len(set) == 0 {
		s.mu.Unlock()
		return
	}
	targets := make([]*wsClient, 0, len(set))
	for c := range set {
		targets = append(targets, c)
	}
	s.mu.Unlock()

	frame, err := json.Marshal(envelope{Type: evt.Type(), SessionID: evt.Session(), At: evt.At(), Event: evt})
	if err != nil {
		s.log.Error("encode event frame: %v", err)
		return
	}

	for _, c := range targets {
		select {
		case c.outbox <- frame:
		default:
			c.dropped++
			s.log.Warn("dropped event frame for a slow /events client on session %s (total dropped: %d)", evt.Session(), c.dropped)
		}
	}
}
