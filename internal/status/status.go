// Package status provides a thread-safe status tracker for the game-controller daemon.
// The control loop writes it; HTTP handlers and MQTT heartbeats read it.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/game-controller/internal/controller"
	"github.com/sweeney/game-controller/internal/mqtt"
	"github.com/sweeney/game-controller/internal/serial"
)

// NetworkInfo contains network state as reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	ButtonMs    int64
	MotionMs    int64
	TiltMs      int64
	ServoMs     int64
	HeartbeatMs int64
	Serial      string
	Baud        int
	Broker      string
	HTTPPort    string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and stays valid after the lock is released.
type Snapshot struct {
	Controller    controller.Snapshot
	Link          serial.Stats
	Running       bool
	Fault         string
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	MQTTOutbox    mqtt.OutboxStats
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update stores the loop's view of the world. The first call marks the
// controller as running.
func (t *Tracker) Update(c controller.Snapshot, link serial.Stats) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.Controller, t.snap.Link, t.snap.Running = c, link, true
}

// SetFault records why the controller refused to start.
func (t *Tracker) SetFault(reason string) {
	t.mu.Lock()
	t.snap.Fault = reason
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetMQTTOutbox records the publisher's offline queue depth and drop count.
func (t *Tracker) SetMQTTOutbox(stats mqtt.OutboxStats) {
	t.mu.Lock()
	t.snap.MQTTOutbox = stats
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
