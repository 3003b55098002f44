package notify

import "testing"

func TestPublishReachesAllSubscribers(t *testing.T) {
	h := NewHub()
	ch1, cancel1 := h.Subscribe()
	ch2, cancel2 := h.Subscribe()
	defer cancel1()
	defer cancel2()

	h.Publish(Event{Type: EventInsert, Collection: CollectionVerifications})

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			if ev.Type != EventInsert {
				t.Fatalf("subscriber %d: event = %+v", i, ev)
			}
		default:
			t.Fatalf("subscriber %d: no event received", i)
		}
	}
}

func TestCancelUnsubscribes(t *testing.T) {
	h := NewHub()
	_, cancel := h.Subscribe()
	if h.SubscriberCount() != 1 {
		t.Fatalf("count = %d, want 1", h.SubscriberCount())
	}

	cancel()
	cancel() // safe to call twice
	if h.SubscriberCount() != 0 {
		t.Fatalf("count = %d, want 0", h.SubscriberCount())
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe()
	defer cancel()

	// Fill the buffer past capacity; Publish must never block.
	for i := 0; i < 40; i++ {
		h.Publish(Event{Type: EventUpdate, Collection: CollectionLogs})
	}

	var received int
	for {
		select {
		case <-ch:
			received++
			continue
		default:
		}
		break
	}
	if received == 0 || received > 16 {
		t.Fatalf("received = %d, want between 1 and buffer size", received)
	}
}
