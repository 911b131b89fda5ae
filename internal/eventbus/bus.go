package eventbus

import (
	"sync"

	"github.com/sworddut/myclaw/internal/logging"
)

// Handler receives published events. A handler that panics or returns is
// isolated from the publisher and from every other handler (spec.md §4.5,
// §8 "Event bus isolation").
type Handler func(Event)

// Bus is a synchronous, subscription-ordered, error-isolated publish/
// subscribe fan-out.
type Bus struct {
	mu       sync.Mutex
	handlers []*subscription
	nextID   uint64
	log      *logging.Logger
}

type subscription struct {
	id      uint64
	handler Handler
	active  bool
}

// New creates an empty Bus.
func New(log *logging.Logger) *Bus {
	if log == nil {
		log = logging.New("bus", nil, logging.Info)
	}
	return &Bus{log: log}
}

// Subscribe registers handler and returns an unsubscribe function. Delivery
// order equals subscription order among handlers still active at publish
// time.
func (b *Bus) Subscribe(handler Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &subscription{id: b.nextID, handler: handler, active: true}
	b.handlers = append(b.handlers, sub)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		sub.active = false
	}
}

// Publish delivers event to every active subscriber in subscription order.
// A handler that panics is recovered and logged; it never interrupts
// delivery to subsequent handlers or propagates to the caller.
func (b *Bus) Publish(event Event) {
	b.mu.Lock()
	snapshot := make([]*subscription, 0, len(b.handlers))
	for _, sub := range b.handlers {
		if sub.active {
			snapshot = append(snapshot, sub)
		}
	}
	b.mu.Unlock()

	for _, sub := range snapshot {
		b.deliver(sub, event)
	}
}

func (b *Bus) deliver(sub *subscription, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("subscriber %d panicked handling %s: %v", sub.id, event.Type(), r)
		}
	}()
	sub.handler(event)
}
