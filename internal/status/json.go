package status

import (
	"encoding/json"
	"math"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	State         string       `json:"state"`
	Running       bool         `json:"running"`
	Fault         string       `json:"fault,omitempty"`
	LED           LEDJSON      `json:"led"`
	Servo         ServoJSON    `json:"servo"`
	Tilt          TiltJSON     `json:"tilt"`
	Inputs        InputsJSON   `json:"inputs"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"event_counts"`
	Link          LinkJSON     `json:"link"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// LEDJSON is the colour currently shown and the blink cadence.
type LEDJSON struct {
	Color   string `json:"color"`
	BlinkMs uint32 `json:"blink_ms"`
}

// ServoJSON is the servo position and sweep direction.
type ServoJSON struct {
	Position  int `json:"position"`
	Direction int `json:"direction"`
}

// TiltJSON holds the latest tilt angles in degrees.
type TiltJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// InputsJSON holds the debounced digital input levels.
type InputsJSON struct {
	Button bool `json:"button"`
	Motion bool `json:"motion"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
	Queued    int    `json:"queued"`
	Dropped   int    `json:"dropped_messages"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	ButtonPresses int `json:"button_presses"`
	MotionEvents  int `json:"motion_events"`
	Commands      int `json:"commands"`
	Ignored       int `json:"ignored"`
	Transitions   int `json:"transitions"`
}

// LinkJSON reports serial traffic that was dropped.
type LinkJSON struct {
	Device          string `json:"device"`
	RxDroppedChunks int64  `json:"rx_dropped_chunks"`
	TxDroppedLines  int64  `json:"tx_dropped_lines"`
	OverlongLines   int    `json:"overlong_lines"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	ButtonMs    int64  `json:"button_ms"`
	MotionMs    int64  `json:"motion_ms"`
	TiltMs      int64  `json:"tilt_ms"`
	ServoMs     int64  `json:"servo_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Serial      string `json:"serial"`
	Baud        int    `json:"baud"`
	Broker      string `json:"broker"`
	HTTPPort    string `json:"http_port"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func buildInner(snap Snapshot) StatusInner {
	c := snap.Controller
	return StatusInner{
		State:         c.State.String(),
		Running:       snap.Running,
		Fault:         snap.Fault,
		LED:           LEDJSON{Color: c.Color.String(), BlinkMs: c.BlinkInterval},
		Servo:         ServoJSON{Position: c.ServoPos, Direction: c.ServoDir},
		Tilt:          TiltJSON{X: round2(c.AngleX), Y: round2(c.AngleY)},
		Inputs:        InputsJSON{Button: c.ButtonPressed, Motion: c.MotionDetected},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT: MQTTStatus{
			Connected: snap.MQTTConnected,
			Broker:    snap.Config.Broker,
			Queued:    snap.MQTTOutbox.Queued,
			Dropped:   snap.MQTTOutbox.Dropped,
		},
		Counts: CountsJSON{
			ButtonPresses: c.Counts.ButtonPresses,
			MotionEvents:  c.Counts.MotionEvents,
			Commands:      c.Counts.Commands,
			Ignored:       c.Counts.Ignored,
			Transitions:   c.Counts.Transitions,
		},
		Link: LinkJSON{
			Device:          snap.Config.Serial,
			RxDroppedChunks: snap.Link.RxDroppedChunks,
			TxDroppedLines:  snap.Link.TxDroppedLines,
			OverlongLines:   snap.Link.OverlongLines,
		},
		Config: ConfigJSON{
			ButtonMs:    snap.Config.ButtonMs,
			MotionMs:    snap.Config.MotionMs,
			TiltMs:      snap.Config.TiltMs,
			ServoMs:     snap.Config.ServoMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Serial:      snap.Config.Serial,
			Baud:        snap.Config.Baud,
			Broker:      snap.Config.Broker,
			HTTPPort:    snap.Config.HTTPPort,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the indented JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatCompact returns the same document as FormatJSON on a single line,
// as pushed to websocket clients.
func FormatCompact(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
