// Package mqtt mirrors controller events to an MQTT broker for telemetry.
// Publishing never blocks the control loop.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/game-controller/internal/logic"
)

// Topic is the MQTT topic for controller events.
const Topic = "game/controller/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "game/controller/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a controller event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active and how
// the offline outbox is faring.
type ConnectionStatus interface {
	IsConnected() bool
	OutboxStats() OutboxStats
}

// OutboxStats describes messages held back while the broker was unreachable.
// Dropped counts messages overwritten since start and never resets.
type OutboxStats struct {
	Queued  int
	Dropped int
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT", "FAULT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Controller ControllerPayload `json:"controller"`
}

// ControllerPayload contains the event details.
type ControllerPayload struct {
	Timestamp string `json:"timestamp"`
	UptimeMs  uint32 `json:"uptime_ms"`
	Event     string `json:"event"`
	State     string `json:"state,omitempty"`
	From      string `json:"from,omitempty"`
}

var eventNames = map[logic.EventType]string{
	logic.EventAccel:  "TILT",
	logic.EventButton: "BUTTON",
	logic.EventMotion: "MOTION",
	logic.EventState:  "STATE",
}

// FormatPayload creates the JSON payload for a controller event observed at wall time at.
func FormatPayload(event logic.Event, at time.Time) ([]byte, error) {
	name, ok := eventNames[event.Type]
	if !ok {
		name = string(event.Type)
	}
	p := Payload{
		Controller: ControllerPayload{
			Timestamp: at.UTC().Format(time.RFC3339),
			UptimeMs:  uint32(event.Time),
			Event:     name,
		},
	}
	if event.Type == logic.EventState {
		p.Controller.State = event.State.String()
		p.Controller.From = event.From.String()
	}
	return json.Marshal(p)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp,omitempty"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Event:  event.Event,
			Reason: event.Reason,
		},
	}
	if !event.Timestamp.IsZero() {
		payload.System.Timestamp = event.Timestamp.UTC().Format(time.RFC3339)
	}
	return json.Marshal(payload)
}

// willPayload is the last-will message the broker publishes if we vanish.
func willPayload() []byte {
	data, _ := FormatSystemPayload(SystemEvent{Event: "OFFLINE", Reason: "CONNECTION_LOST"})
	return data
}
