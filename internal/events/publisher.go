package events

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// Publisher is the server-side counterpart of the channel: it broadcasts
// events to a company's topics.
type Publisher struct {
	client mqtt.Client
}

// NewPublisher connects a publisher to the broker.
func NewPublisher(brokerURL string) (*Publisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(fmt.Sprintf("eco-monitor-server-%d", time.Now().UnixNano())).
		SetConnectTimeout(connectTimeout).
		SetAutoReconnect(true).
		SetConnectRetryInterval(reconnectDelay)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return &Publisher{client: client}, nil
}

// Publish broadcasts an event to the company's topic. Delivery failures are
// logged; a broadcast never fails the triggering request.
func (p *Publisher) Publish(companyID, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event, err)
	}

	topic := topicFor(companyID, event)
	token := p.client.Publish(topic, subscribeQoS, false, data)
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			log.WithError(err).WithField("topic", topic).Error("publish failed")
		}
	}()
	return nil
}

// Close disconnects the publisher.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
