package eventbus

import "testing"

func TestPublishDeliversInSubscriptionOrder(t *testing.T) {
	bus := New(nil)
	var order []int

	bus.Subscribe(func(Event) { order = append(order, 1) })
	bus.Subscribe(func(Event) { order = append(order, 2) })
	bus.Subscribe(func(Event) { order = append(order, 3) })

	bus.Publish(NewSessionEnd("s1", "done"))

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("expected handlers delivered in subscription order, got %v", order)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := New(nil)
	calls := 0
	unsubscribe := bus.Subscribe(func(Event) { calls++ })

	bus.Publish(NewSessionEnd("s1", "done"))
	unsubscribe()
	bus.Publish(NewSessionEnd("s1", "done"))

	if calls != 1 {
		t.Fatalf("expected exactly 1 delivery before unsubscribe, got %d", calls)
	}
}

func TestPanickingHandlerIsIsolated(t *testing.T) {
	bus := New(nil)
	secondCalled := false

	bus.Subscribe(func(Event) { panic("boom") })
	bus.Subscribe(func(Event) { secondCalled = true })

	bus.Publish(NewSessionEnd("s1", "done"))

	if !secondCalled {
		t.Fatalf("expected a panicking handler to not block delivery to later subscribers")
	}
}

func TestEventCarriesSessionAndType(t *testing.T) {
	evt := NewStart("s1", "/ws", "/log", "sys")
	if evt.Type() != "start" {
		t.Fatalf("expected type 'start', got %s", evt.Type())
	}
	if evt.Session() != "s1" {
		t.Fatalf("expected session 's1', got %s", evt.Session())
	}
	if evt.At().IsZero() {
		t.Fatalf("expected a non-zero timestamp")
	}
}
