package mqtt

import (
	"fmt"
	"sync"
	"time"

	"github.com/denisbrodbeck/machineid"
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/sweeney/game-controller/internal/logic"
)

const (
	clientIDPrefix  = "game-controller"
	outboxCapacity  = 256
	disconnectQuiet = 1000 // ms
)

// ClientID returns a client id that is stable per machine, so a restarted
// controller takes over its previous session instead of colliding with
// another controller on the same broker.
func ClientID() string {
	id, err := machineid.ProtectedID(clientIDPrefix)
	if err != nil || len(id) < 8 {
		return clientIDPrefix
	}
	return clientIDPrefix + "-" + id[:8]
}

// RealPublisher publishes to an actual MQTT broker. It connects in the
// background and queues messages while the broker is unreachable.
type RealPublisher struct {
	client paho.Client
	topic  string
	now    func() time.Time

	mu        sync.Mutex
	pending   *outbox
	connected bool
	everUp    bool
}

// NewRealPublisher creates a publisher for broker. It returns immediately;
// the connection is established (and re-established) in the background.
func NewRealPublisher(broker string) *RealPublisher {
	p := &RealPublisher{
		topic:   Topic,
		now:     time.Now,
		pending: newOutbox(outboxCapacity),
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(ClientID()).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(TopicSystem, string(willPayload()), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(p.onConnectionLost)

	p.client = paho.NewClient(opts)
	p.client.Connect()
	return p
}

func (p *RealPublisher) onConnect(c paho.Client) {
	p.mu.Lock()
	reconnect := p.everUp
	p.connected = true
	p.everUp = true
	queued := p.pending.drainAll()
	p.mu.Unlock()

	if reconnect {
		payload, _ := FormatSystemPayload(SystemEvent{Timestamp: p.now(), Event: "RECONNECTED"})
		c.Publish(TopicSystem, 1, true, payload)
	}
	for _, m := range queued {
		c.Publish(m.topic, m.qos, m.retained, m.payload)
	}
	log.Info().Bool("reconnect", reconnect).Int("replayed", len(queued)).Msg("mqtt connected")
}

func (p *RealPublisher) onConnectionLost(_ paho.Client, err error) {
	p.mu.Lock()
	p.connected = false
	p.mu.Unlock()
	log.Warn().Err(err).Msg("mqtt connection lost")
}

// send publishes without waiting for delivery, or queues while offline.
func (p *RealPublisher) send(topic string, qos byte, retained bool, payload []byte) {
	p.mu.Lock()
	if !p.connected {
		p.pending.push(queuedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	token := p.client.Publish(topic, qos, retained, payload)
	go func() {
		if token.WaitTimeout(5*time.Second) && token.Error() != nil {
			log.Warn().Err(token.Error()).Str("topic", topic).Msg("mqtt publish failed")
		}
	}()
}

// Publish sends a controller event to the MQTT broker.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(event, p.now())
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	// QoS 0 (at-most-once), not retained
	p.send(p.topic, 0, false, payload)
	return nil
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	// QoS 1 (at-least-once): lifecycle events should reach the broker
	p.send(TopicSystem, 1, event.Retained, payload)
	return nil
}

// Emit implements the controller telemetry sink.
func (p *RealPublisher) Emit(event logic.Event) {
	if err := p.Publish(event); err != nil {
		log.Warn().Err(err).Msg("telemetry publish error")
	}
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// OutboxStats reports the offline queue depth and how many queued messages
// have been lost to overflow.
func (p *RealPublisher) OutboxStats() OutboxStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return OutboxStats{Queued: p.pending.len(), Dropped: p.pending.dropped}
}

// Close disconnects from the broker, giving in-flight messages a moment.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(disconnectQuiet)
	return nil
}
