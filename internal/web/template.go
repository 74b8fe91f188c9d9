package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/game-controller/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"angle": func(v float64) string {
		return fmt.Sprintf("%.2f°", v)
	},
	"disabled": func(ms int64) string {
		if ms == 0 {
			return "disabled"
		}
		return fmt.Sprintf("%dms", ms)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Game Controller</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.swatch { display: inline-block; width: 1em; height: 1em; border: 1px solid #888; vertical-align: middle; margin-right: 6px; }
.fault { color: #fff; background: #c00; padding: 4px 8px; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Game Controller<span id="live-dot" class="live-dot pending" title="connecting"></span></h1>
{{if .Fault}}<p class="fault">FAULT: {{.Fault}}</p>{{end}}

<h2>State</h2>
<table>
<tr><th>Game state</th><td id="state">{{.Controller.State}}</td></tr>
<tr><th>LED</th><td><span id="led-swatch" class="swatch" style="background: {{.Controller.Color}}"></span><span id="led">{{.Controller.Color}}</span>{{if .Controller.BlinkInterval}} blinking {{.Controller.BlinkInterval}}ms{{end}}</td></tr>
<tr><th>Servo</th><td id="servo">{{.Controller.ServoPos}}</td></tr>
<tr><th>Tilt X</th><td id="tilt-x">{{angle .Controller.AngleX}}</td></tr>
<tr><th>Tilt Y</th><td id="tilt-y">{{angle .Controller.AngleY}}</td></tr>
<tr><th>Button</th><td id="button">{{if .Controller.ButtonPressed}}pressed{{else}}released{{end}}</td></tr>
<tr><th>Motion</th><td id="motion">{{if .Controller.MotionDetected}}detected{{else}}none{{end}}</td></tr>
<tr><th>Running</th><td>{{if .Running}}yes{{else}}no{{end}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>Serial</th><td>{{.Config.Serial}} @ {{.Config.Baud}}</td></tr>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Outbox</th><td id="outbox">{{.MQTTOutbox.Queued}} queued, {{.MQTTOutbox.Dropped}} dropped</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Button presses</th><td id="count-button">{{.Controller.Counts.ButtonPresses}}</td></tr>
<tr><th>Motion events</th><td id="count-motion">{{.Controller.Counts.MotionEvents}}</td></tr>
<tr><th>Commands</th><td id="count-commands">{{.Controller.Counts.Commands}}</td></tr>
<tr><th>Ignored lines</th><td id="count-ignored">{{.Controller.Counts.Ignored}}</td></tr>
<tr><th>Transitions</th><td>{{.Controller.Counts.Transitions}}</td></tr>
<tr><th>RX chunks dropped</th><td>{{.Link.RxDroppedChunks}}</td></tr>
<tr><th>TX lines dropped</th><td>{{.Link.TxDroppedLines}}</td></tr>
<tr><th>Overlong lines</th><td>{{.Link.OverlongLines}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Button / motion poll</th><td>{{.Config.ButtonMs}}ms / {{.Config.MotionMs}}ms</td></tr>
<tr><th>Tilt / servo</th><td>{{.Config.TiltMs}}ms / {{.Config.ServoMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{disabled .Config.HeartbeatMs}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
<script>
(function() {
  var dot = document.getElementById("live-dot");
  function set(id, v) { document.getElementById(id).textContent = v; }
  function setDot(cls, title) { dot.className = "live-dot " + cls; dot.title = title; }

  function connect() {
    var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
    ws.onopen = function() { setDot("ok", "live"); };
    ws.onclose = function() { setDot("err", "offline"); setTimeout(connect, 5000); };
    ws.onmessage = function(ev) {
      try {
        var s = JSON.parse(ev.data).status;
        set("state", s.state);
        set("led", s.led.color);
        document.getElementById("led-swatch").style.background = s.led.color;
        set("servo", s.servo.position);
        set("tilt-x", s.tilt.x.toFixed(2) + "°");
        set("tilt-y", s.tilt.y.toFixed(2) + "°");
        set("button", s.inputs.button ? "pressed" : "released");
        set("motion", s.inputs.motion ? "detected" : "none");
        set("count-button", s.event_counts.button_presses);
        set("count-motion", s.event_counts.motion_events);
        set("count-commands", s.event_counts.commands);
        set("count-ignored", s.event_counts.ignored);
        set("outbox", s.mqtt.queued + " queued, " + s.mqtt.dropped_messages + " dropped");
      } catch (e) {}
    };
  }
  connect();
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
