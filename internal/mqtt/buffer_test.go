package mqtt

import (
	"testing"
	"time"

	"github.com/sweeney/game-controller/internal/logic"
)

func pushN(o *outbox, from, to int) {
	for i := from; i < to; i++ {
		o.push(queuedMsg{topic: Topic, payload: []byte{byte(i)}})
	}
}

func TestOutboxEmptyDrain(t *testing.T) {
	o := newOutbox(10)
	if got := o.drainAll(); got != nil {
		t.Errorf("expected nil from empty drain, got %d items", len(got))
	}
}

func TestOutboxKeepsOrder(t *testing.T) {
	o := newOutbox(10)
	pushN(o, 0, 5)

	got := o.drainAll()
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	for i, m := range got {
		if m.payload[0] != byte(i) {
			t.Errorf("item %d: got payload %d", i, m.payload[0])
		}
	}
	if o.len() != 0 {
		t.Errorf("expected empty after drain, len %d", o.len())
	}
}

func TestOutboxOverflowDropsOldest(t *testing.T) {
	o := newOutbox(5)
	pushN(o, 0, 8)

	got := o.drainAll()
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	for i, m := range got {
		if want := byte(i + 3); m.payload[0] != want {
			t.Errorf("item %d: got %d, want %d", i, m.payload[0], want)
		}
	}
	if o.dropped != 3 {
		t.Errorf("dropped: got %d, want 3", o.dropped)
	}
	if o.overflow {
		t.Error("overflow flag should reset on drain")
	}
}

func TestOutboxReusableAfterDrain(t *testing.T) {
	o := newOutbox(5)
	pushN(o, 0, 3)
	o.drainAll()

	pushN(o, 10, 14)
	got := o.drainAll()
	if len(got) != 4 {
		t.Fatalf("expected 4 items, got %d", len(got))
	}
	for i, m := range got {
		if want := byte(10 + i); m.payload[0] != want {
			t.Errorf("item %d: got %d, want %d", i, m.payload[0], want)
		}
	}
}

func TestOutboxPreservesFields(t *testing.T) {
	o := newOutbox(2)
	o.push(queuedMsg{topic: TopicSystem, payload: []byte(`{"x":1}`), qos: 1, retained: true})

	got := o.drainAll()
	if len(got) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got))
	}
	m := got[0]
	if m.topic != TopicSystem || string(m.payload) != `{"x":1}` || m.qos != 1 || !m.retained {
		t.Errorf("fields not preserved: %+v", m)
	}
}

func TestPublisherReportsOutboxWhileOffline(t *testing.T) {
	p := &RealPublisher{topic: Topic, now: time.Now, pending: newOutbox(2)}

	for i := 0; i < 3; i++ {
		if err := p.Publish(logic.Event{Type: logic.EventButton}); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}

	got := p.OutboxStats()
	if got.Queued != 2 || got.Dropped != 1 {
		t.Errorf("outbox stats: got %+v, want 2 queued, 1 dropped", got)
	}

	p.mu.Lock()
	p.pending.drainAll()
	p.mu.Unlock()
	if got := p.OutboxStats(); got.Queued != 0 || got.Dropped != 1 {
		t.Errorf("after replay: got %+v, want drops to persist", got)
	}
}
