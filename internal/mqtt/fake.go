package mqtt

import (
	"time"

	"github.com/sweeney/game-controller/internal/logic"
)

// Message is one publish seen by FakePublisher.
type Message struct {
	Topic    string
	Payload  []byte
	Retained bool
}

// FakePublisher records what would have gone to the broker.
// Not safe for concurrent use.
type FakePublisher struct {
	// Events and SystemEvents hold the successfully published inputs;
	// Payloads and SystemPayloads the matching JSON.
	Events         []logic.Event
	Payloads       [][]byte
	SystemEvents   []SystemEvent
	SystemPayloads [][]byte

	// Messages lists every publish across both topics in order.
	Messages []Message

	// PublishError and PublishSystemError make the respective call fail
	// without recording anything.
	PublishError       error
	PublishSystemError error

	Closed    bool
	Connected bool
	Outbox    OutboxStats

	// Now stamps event payloads.
	Now time.Time
}

// NewFakePublisher creates a FakePublisher with a fixed clock.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{Now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *FakePublisher) Publish(event logic.Event) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatPayload(event, f.Now)
	if err != nil {
		return err
	}
	f.Events = append(f.Events, event)
	f.Payloads = append(f.Payloads, payload)
	f.Messages = append(f.Messages, Message{Topic: Topic, Payload: payload})
	return nil
}

func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.SystemPayloads = append(f.SystemPayloads, payload)
	f.Messages = append(f.Messages, Message{Topic: TopicSystem, Payload: payload, Retained: event.Retained})
	return nil
}

// Emit implements controller.Sink; failures are dropped as on the real client.
func (f *FakePublisher) Emit(event logic.Event) {
	_ = f.Publish(event)
}

func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

func (f *FakePublisher) OutboxStats() OutboxStats {
	return f.Outbox
}

// Reset forgets everything recorded and clears injected errors.
func (f *FakePublisher) Reset() {
	*f = FakePublisher{Now: f.Now}
}
