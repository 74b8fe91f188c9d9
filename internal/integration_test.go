package internal

import (
	"encoding/json"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/game-controller/internal/accel"
	"github.com/sweeney/game-controller/internal/actuator"
	"github.com/sweeney/game-controller/internal/clock"
	"github.com/sweeney/game-controller/internal/controller"
	"github.com/sweeney/game-controller/internal/gpio"
	"github.com/sweeney/game-controller/internal/logic"
	"github.com/sweeney/game-controller/internal/mqtt"
	"github.com/sweeney/game-controller/internal/protocol"
	"github.com/sweeney/game-controller/internal/serial"
	"github.com/sweeney/game-controller/internal/status"
)

// rig wires a controller to a real serial Link over an in-memory port,
// the fake sensors and actuators, and a fake MQTT publisher.
type rig struct {
	ctrl   *controller.Controller
	clk    *clock.Fake
	port   *serial.FakePort
	link   *serial.Link
	inputs *gpio.FakeReader
	accel  *accel.FakeReader
	act    *actuator.FakeDriver
	pub    *mqtt.FakePublisher
}

func newRig(t *testing.T, samples []gpio.Sample) *rig {
	t.Helper()
	if len(samples) == 0 {
		samples = []gpio.Sample{{}}
	}
	r := &rig{
		clk:    clock.NewFake(0),
		port:   serial.NewFakePort(),
		inputs: gpio.NewFakeReader(samples),
		accel:  accel.NewFakeReader(accel.Sample{Z: 16384}),
		act:    actuator.NewFakeDriver(),
		pub:    mqtt.NewFakePublisher(),
	}
	r.link = serial.NewLink(r.port)
	r.link.Start()
	t.Cleanup(func() { r.link.Close() })

	if err := controller.Probe(r.accel, r.act); err != nil {
		t.Fatalf("probe: %v", err)
	}
	r.ctrl = controller.New(controller.Config{
		Inputs:    r.inputs,
		Accel:     r.accel,
		Actuators: r.act,
		Transport: r.link,
		Sink:      r.pub,
		Rand:      rand.New(rand.NewPCG(7, 7)),
	}, r.clk.Now())
	return r
}

// stepUntil runs 10ms passes until cond holds. Inbound bytes reach the
// controller through the link's reader goroutine, so this polls in real time.
func (r *rig) stepUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		r.ctrl.Step(r.clk.Advance(10))
		time.Sleep(time.Millisecond)
	}
}

// steps runs n 10ms passes.
func (r *rig) steps(n int) {
	for i := 0; i < n; i++ {
		r.ctrl.Step(r.clk.Advance(10))
	}
}

func (r *rig) inState(s logic.GameState) func() bool {
	return func() bool { return r.ctrl.Snapshot().State == s }
}

func (r *rig) writtenLines(t *testing.T) []string {
	t.Helper()
	out := r.port.Written()
	if out != "" && !strings.HasSuffix(out, "\n") {
		t.Fatalf("output ends mid-line: %q", out)
	}
	return strings.Split(strings.TrimSuffix(out, "\n"), "\n")
}

// TestIntegrationGameSession plays a short session over the serial link:
// the host starts the game, grants a power-up, then resets the controller.
func TestIntegrationGameSession(t *testing.T) {
	r := newRig(t, nil)

	r.port.Inject([]byte("S,1\n"))
	r.stepUntil(t, "PLAYING", r.inState(logic.StatePlaying))
	if got := r.act.LastColor(); got != logic.ColorGreen {
		t.Errorf("playing colour: got %s, want green", got)
	}

	r.port.Inject([]byte("S,3\r\n"))
	r.stepUntil(t, "POWERUP", r.inState(logic.StatePowerUp))
	start := r.ctrl.Snapshot().ServoPos
	r.steps(20) // four servo ticks
	if got := r.ctrl.Snapshot().ServoPos; got == start {
		t.Errorf("servo did not sweep in POWERUP (still %d)", got)
	}

	r.port.Inject([]byte("R,7\n"))
	r.stepUntil(t, "IDLE", r.inState(logic.StateIdle))

	snap := r.ctrl.Snapshot()
	if snap.ServoPos != logic.ServoCenter {
		t.Errorf("servo after reset: got %d, want %d", snap.ServoPos, logic.ServoCenter)
	}
	if snap.Color != logic.ColorWhite || snap.BlinkInterval != 0 {
		t.Errorf("LED after reset: got %s blink %d", snap.Color, snap.BlinkInterval)
	}
	if last := r.act.Tones[len(r.act.Tones)-1]; last != logic.ResetTone {
		t.Errorf("last tone: got %+v, want reset confirmation", last)
	}
	if snap.Counts.Commands != 3 || snap.Counts.Ignored != 0 {
		t.Errorf("counts: got %+v", snap.Counts)
	}

	// Every transition is mirrored to telemetry in order.
	want := []logic.GameState{logic.StatePlaying, logic.StatePowerUp, logic.StateIdle}
	if len(r.pub.Events) != len(want) {
		t.Fatalf("expected %d telemetry events, got %d", len(want), len(r.pub.Events))
	}
	for i, s := range want {
		if r.pub.Events[i].Type != logic.EventState || r.pub.Events[i].State != s {
			t.Errorf("event %d: got %+v, want state %s", i, r.pub.Events[i], s)
		}
	}

	var p mqtt.Payload
	if err := json.Unmarshal(r.pub.Payloads[1], &p); err != nil {
		t.Fatalf("invalid payload JSON: %v", err)
	}
	if p.Controller.Event != "STATE" || p.Controller.State != "POWERUP" || p.Controller.From != "PLAYING" {
		t.Errorf("payload: got %+v", p.Controller)
	}
}

// TestIntegrationIgnoresBadTraffic feeds garbage between valid commands and
// checks that only the valid ones take effect.
func TestIntegrationIgnoresBadTraffic(t *testing.T) {
	r := newRig(t, nil)

	overlong := "S," + strings.Repeat("1", protocol.MaxLineLength+10)
	r.port.Inject([]byte("X,1\nS,99\nhello\n" + overlong + "\nV,4\nS,2\n"))
	r.stepUntil(t, "COLLISION", r.inState(logic.StateCollision))

	snap := r.ctrl.Snapshot()
	if snap.Counts.Ignored != 4 {
		t.Errorf("ignored: got %d, want 4", snap.Counts.Ignored)
	}
	if snap.Counts.Transitions != 1 {
		t.Errorf("transitions: got %d, want 1", snap.Counts.Transitions)
	}
	if got := r.link.Stats().OverlongLines; got != 1 {
		t.Errorf("overlong lines: got %d, want 1", got)
	}
	if len(r.pub.Events) != 1 {
		t.Errorf("expected only the COLLISION transition in telemetry, got %d events", len(r.pub.Events))
	}
}

// TestIntegrationOutboundLines checks that sensor events reach the host as
// whole, well-formed lines.
func TestIntegrationOutboundLines(t *testing.T) {
	// Reads at t=50, 100, 150, 200: the button rises at 100, motion at 200.
	samples := []gpio.Sample{
		{},
		{Button: true},
		{Button: true},
		{Motion: true},
	}
	r := newRig(t, samples)
	r.accel.Samples = []accel.Sample{{X: 8192, Z: 14189}}

	r.steps(30)

	r.stepUntil(t, "serial writes", func() bool {
		out := r.port.Written()
		return strings.Contains(out, "B,1\n") && strings.Contains(out, "M,1\n")
	})

	var buttons, motions, tilts int
	for _, line := range r.writtenLines(t) {
		switch {
		case line == "B,1":
			buttons++
		case line == "M,1":
			motions++
		case strings.HasPrefix(line, "A,"):
			tilts++
			if line != "A,30.00,0.00" {
				t.Errorf("tilt line: got %q, want A,30.00,0.00", line)
			}
		default:
			t.Errorf("unexpected outbound line %q", line)
		}
	}
	if buttons != 1 || motions != 1 {
		t.Errorf("got %d button and %d motion lines, want 1 each", buttons, motions)
	}
	if tilts < 3 {
		t.Errorf("expected a tilt line every 100ms, got %d", tilts)
	}

	if angle := r.act.LastAngle(); angle != logic.ServoMin && angle != logic.ServoMax {
		t.Errorf("motion kick should move the servo to an extreme, got %d", angle)
	}
}

// TestIntegrationStatusReflectsController checks the status document built
// from a running controller and link.
func TestIntegrationStatusReflectsController(t *testing.T) {
	r := newRig(t, nil)

	r.port.Inject([]byte("V,5\n"))
	r.stepUntil(t, "SPECIAL1", r.inState(logic.StateSpecial1))

	tracker := status.NewTracker(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), status.Config{Serial: "/dev/ttyACM0"})
	tracker.Update(r.ctrl.Snapshot(), r.link.Stats())

	var sj status.StatusJSON
	if err := json.Unmarshal(status.FormatJSON(tracker.Snapshot()), &sj); err != nil {
		t.Fatalf("invalid status JSON: %v", err)
	}
	if sj.Status.State != "SPECIAL1" {
		t.Errorf("state: got %q, want SPECIAL1", sj.Status.State)
	}
	if sj.Status.LED.BlinkMs != 150 {
		t.Errorf("blink: got %d, want 150", sj.Status.LED.BlinkMs)
	}
	if sj.Status.Link.Device != "/dev/ttyACM0" {
		t.Errorf("link device: got %q", sj.Status.Link.Device)
	}
}

// TestIntegrationSensorMissing checks the fail-stop indication.
func TestIntegrationSensorMissing(t *testing.T) {
	bus := accel.NewFakeBus(0x69)
	sensor := accel.NewMPU6050(bus, accel.DefaultAddress)
	act := actuator.NewFakeDriver()

	if err := controller.Probe(sensor, act); err != controller.ErrSensorMissing {
		t.Fatalf("expected ErrSensorMissing, got %v", err)
	}
	if act.LastColor() != logic.ColorRed {
		t.Errorf("expected solid red, got %s", act.LastColor())
	}
	if len(act.Tones) != 0 || len(act.Angles) != 0 {
		t.Error("fail-stop must not drive the buzzer or servo")
	}
}
