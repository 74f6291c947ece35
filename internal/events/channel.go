// Package events maintains the push-event channel: one MQTT connection per
// process, scoped to a single company's topics at a time. Inbound
// container_updated and location_updated messages fan out to any number of
// registered listeners. Transport failures are logged and reflected in
// IsConnected, never surfaced as errors to callers.
package events

import (
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/eco-monitor/internal/models"
)

const (
	connectTimeout       = 20 * time.Second
	reconnectDelay       = time.Second
	maxReconnectInterval = 10 * time.Second
	subscribeQoS         = 1
)

// Handler receives the raw JSON payload of one event.
type Handler func(payload []byte)

// Subscription identifies a registered listener. Each registration gets its
// own handle, so independent listeners on the same event are individually
// removable.
type Subscription struct {
	event string
	id    int
}

// Channel is the event channel client.
type Channel struct {
	mu        sync.Mutex
	brokerURL string
	client    mqtt.Client
	companyID string
	nextID    int
	listeners map[string]map[int]Handler
}

// NewChannel creates a disconnected channel for the given broker.
func NewChannel(brokerURL string) *Channel {
	return &Channel{
		brokerURL: brokerURL,
		listeners: make(map[string]map[int]Handler),
	}
}

// Connect establishes the transport connection and joins the company's
// topics once connected. Connecting while already connected is a no-op.
// Connection errors are logged; the connectivity indicator is the only
// user-visible signal.
func (c *Channel) Connect(companyID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil && c.client.IsConnectionOpen() {
		log.Debug("event channel already connected")
		return
	}

	c.companyID = companyID

	opts := mqtt.NewClientOptions().
		AddBroker(c.brokerURL).
		SetClientID(fmt.Sprintf("eco-monitor-%d", time.Now().UnixNano())).
		SetConnectTimeout(connectTimeout).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(reconnectDelay).
		SetMaxReconnectInterval(maxReconnectInterval)

	// Re-join the remembered company after every (re)connect; the room
	// state lives here, not in the transport.
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		c.mu.Lock()
		companyID := c.companyID
		c.mu.Unlock()
		if companyID != "" {
			c.subscribe(client, companyID)
		}
		log.WithField("company_id", companyID).Info("event channel connected")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.WithError(err).Warn("event channel connection lost")
	})

	c.client = mqtt.NewClient(opts)
	token := c.client.Connect()
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			log.WithError(err).Error("event channel connect failed")
		}
	}()
}

// JoinCompany switches the channel to another company's topics. Any
// previously joined company is left first, so a listener never receives
// duplicate deliveries from two rooms.
func (c *Channel) JoinCompany(companyID string) {
	c.mu.Lock()
	client := c.client
	previous := c.companyID
	c.companyID = companyID
	c.mu.Unlock()

	if client == nil {
		log.Warn("event channel not initialized")
		return
	}
	if previous != "" && previous != companyID {
		c.unsubscribe(client, previous)
	}
	if client.IsConnectionOpen() {
		c.subscribe(client, companyID)
	}
}

// LeaveCompany leaves the currently joined company's topics.
func (c *Channel) LeaveCompany() {
	c.mu.Lock()
	client := c.client
	previous := c.companyID
	c.companyID = ""
	c.mu.Unlock()

	if client != nil && previous != "" {
		c.unsubscribe(client, previous)
	}
}

// Disconnect leaves the current company best-effort and tears the
// connection down. Safe to call when not connected.
func (c *Channel) Disconnect() {
	c.LeaveCompany()

	c.mu.Lock()
	client := c.client
	c.client = nil
	c.mu.Unlock()

	if client != nil {
		client.Disconnect(250)
		log.Info("event channel disconnected")
	}
}

// IsConnected reports whether the transport connection is currently open.
func (c *Channel) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client != nil && c.client.IsConnectionOpen()
}

// On registers a listener for the named event and returns its handle.
func (c *Channel) On(event string, h Handler) Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	if c.listeners[event] == nil {
		c.listeners[event] = make(map[int]Handler)
	}
	c.listeners[event][c.nextID] = h
	return Subscription{event: event, id: c.nextID}
}

// Off removes a previously registered listener. Removing an already removed
// listener is a no-op.
func (c *Channel) Off(sub Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if handlers, ok := c.listeners[sub.event]; ok {
		delete(handlers, sub.id)
	}
}

func topicFor(companyID, event string) string {
	return "company/" + companyID + "/" + event
}

func (c *Channel) subscribe(client mqtt.Client, companyID string) {
	for _, event := range []string{models.EventContainerUpdated, models.EventLocationUpdated} {
		topic := topicFor(companyID, event)
		token := client.Subscribe(topic, subscribeQoS, c.onMessage)
		go func(topic string) {
			token.Wait()
			if err := token.Error(); err != nil {
				log.WithError(err).WithField("topic", topic).Error("subscribe failed")
				return
			}
			log.WithField("topic", topic).Debug("joined company topic")
		}(topic)
	}
}

func (c *Channel) unsubscribe(client mqtt.Client, companyID string) {
	topics := []string{
		topicFor(companyID, models.EventContainerUpdated),
		topicFor(companyID, models.EventLocationUpdated),
	}
	token := client.Unsubscribe(topics...)
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			log.WithError(err).WithField("company_id", companyID).Warn("unsubscribe failed")
		}
	}()
}

// onMessage dispatches an inbound message to the listeners registered for
// its event name (the last topic segment).
func (c *Channel) onMessage(_ mqtt.Client, msg mqtt.Message) {
	parts := strings.Split(msg.Topic(), "/")
	event := parts[len(parts)-1]
	c.dispatch(event, msg.Payload())
}

func (c *Channel) dispatch(event string, payload []byte) {
	c.mu.Lock()
	handlers := make([]Handler, 0, len(c.listeners[event]))
	for _, h := range c.listeners[event] {
		handlers = append(handlers, h)
	}
	c.mu.Unlock()

	for _, h := range handlers {
		h(payload)
	}
}
