package host

import (
	"testing"
	"time"
)

func TestBus_FirstAndLast(t *testing.T) {
	bus := NewBus()

	_, first := bus.Subscribe("events", "a")
	if !first {
		t.Error("first subscriber not reported as first")
	}
	_, first = bus.Subscribe("events", "b")
	if first {
		t.Error("second subscriber reported as first")
	}
	if _, first := bus.Subscribe("other", "c"); !first {
		t.Error("channels must be counted separately")
	}

	if bus.Unsubscribe("events", "a") {
		t.Error("unsubscribe with one left reported last")
	}
	if !bus.Unsubscribe("events", "b") {
		t.Error("final unsubscribe not reported last")
	}
	if bus.Unsubscribe("events", "b") {
		t.Error("repeated unsubscribe reported last")
	}
	if n := bus.SubscriberCount("events"); n != 0 {
		t.Errorf("SubscriberCount(): got %d", n)
	}
}

func TestBus_PublishRoutesByChannel(t *testing.T) {
	bus := NewBus()
	a, _ := bus.Subscribe("a", "1")
	b, _ := bus.Subscribe("b", "2")

	bus.Publish("a", Message{Kind: KindEvent, Data: []byte(`1`)})

	select {
	case m := <-a:
		if string(m.Data) != "1" {
			t.Errorf("data: got %s", m.Data)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timed out waiting for message")
	}
	select {
	case m := <-b:
		t.Errorf("unexpected message on b: %+v", m)
	default:
	}
}

func TestBus_DropsWhenFull(t *testing.T) {
	bus := NewBus()
	bus.Subscribe("a", "slow")

	done := make(chan struct{})
	go func() {
		for i := 0; i < subBufferSize*4; i++ {
			bus.Publish("a", Message{Kind: KindEvent})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}
