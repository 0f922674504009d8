package event

import (
	"testing"
)

func TestEmitter_SubscribeAndEmit(t *testing.T) {
	e := NewEmitter()

	var got []Event
	e.Subscribe(Connect, func(ev Event) {
		got = append(got, ev)
	})

	e.Emit(Event{Type: Connect})
	e.Emit(Event{Type: Disconnect}) // different type, not delivered
	e.Emit(Event{Type: Connect, Payload: "again"})

	if len(got) != 2 {
		t.Fatalf("handler called %d times, want 2", len(got))
	}
	if got[1].Payload != "again" {
		t.Errorf("Payload = %v, want %q", got[1].Payload, "again")
	}
}

func TestEmitter_Unsubscribe(t *testing.T) {
	e := NewEmitter()

	calls := 0
	sub := e.Subscribe(Message, func(Event) { calls++ })

	e.Emit(Event{Type: Message})
	sub.Unsubscribe()
	e.Emit(Event{Type: Message})

	if calls != 1 {
		t.Errorf("handler called %d times after unsubscribe, want 1", calls)
	}

	// Unsubscribing twice must be harmless.
	sub.Unsubscribe()
}

func TestEmitter_SubscribeAll(t *testing.T) {
	e := NewEmitter()

	var types []Type
	e.SubscribeAll(func(ev Event) {
		types = append(types, ev.Type)
	})

	e.Emit(Event{Type: Connect})
	e.Emit(Event{Type: Pong})
	e.Emit(Event{Type: ManagerStatistics})

	want := []Type{Connect, Pong, ManagerStatistics}
	if len(types) != len(want) {
		t.Fatalf("got %d events, want %d", len(types), len(want))
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, types[i], want[i])
		}
	}
}

func TestEmitter_DeliveryOrder(t *testing.T) {
	e := NewEmitter()

	var order []int
	e.Subscribe(Connect, func(Event) { order = append(order, 1) })
	e.Subscribe(Connect, func(Event) { order = append(order, 2) })
	e.SubscribeAll(func(Event) { order = append(order, 3) })

	e.Emit(Event{Type: Connect})

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("delivery order = %v, want [1 2 3]", order)
	}
}

func TestEmitter_Clear(t *testing.T) {
	e := NewEmitter()

	calls := 0
	e.Subscribe(Error, func(Event) { calls++ })
	e.SubscribeAll(func(Event) { calls++ })

	e.Clear()
	e.Emit(Event{Type: Error})

	if calls != 0 {
		t.Errorf("handlers called %d times after Clear, want 0", calls)
	}
}
