package notify

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"hotel_ops/internal/logger"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// TopicPrefix is where reminders are published, one retained topic per key.
const TopicPrefix = "hotel_ops/notifications/"

const publishTimeout = 5 * time.Second

// Publisher is the MQTT surface the notifier needs.
type Publisher interface {
	Publish(topic string, payload []byte, retain bool) error
}

// MQTTNotifier publishes reminders as retained messages so a device that
// reconnects still sees them; dismissing clears the retained payload.
type MQTTNotifier struct {
	pub Publisher
}

func NewMQTTNotifier(pub Publisher) *MQTTNotifier {
	return &MQTTNotifier{pub: pub}
}

func (n *MQTTNotifier) Schedule(_ context.Context, r Reminder) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return n.pub.Publish(TopicPrefix+r.Key, b, true)
}

func (n *MQTTNotifier) Dismiss(_ context.Context, key string) error {
	return n.pub.Publish(TopicPrefix+key, nil, true)
}

// MQTTClient is a thin paho wrapper implementing Publisher.
type MQTTClient struct {
	cli mqtt.Client
}

// DialMQTT connects to brokerURL (mqtt://, tcp://, ssl://, ws://).
func DialMQTT(brokerURL, clientID string, log *logger.Logger) (*MQTTClient, error) {
	u, err := url.Parse(brokerURL)
	if err != nil {
		return nil, fmt.Errorf("parse mqtt broker url: %w", err)
	}
	log = log.Named("mqtt")

	opts := mqtt.NewClientOptions()
	server := u.Host
	switch u.Scheme {
	case "mqtt", "tcp":
		server = "tcp://" + server
	case "ssl", "tls":
		server = "ssl://" + server
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	case "ws", "wss":
		server = u.Scheme + "://" + server + u.Path
	}
	opts.AddBroker(server)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(mqtt.Client) { log.Infow("mqtt_connected", "broker", u.Host) }
	opts.OnConnectionLost = func(_ mqtt.Client, err error) { log.Errorw("mqtt_connection_lost", "err", err) }
	if u.User != nil {
		pw, _ := u.User.Password()
		opts.SetUsername(u.User.Username())
		opts.SetPassword(pw)
	}

	cli := mqtt.NewClient(opts)
	t := cli.Connect()
	if !t.WaitTimeout(publishTimeout) {
		return nil, fmt.Errorf("connect mqtt %s: timed out", u.Host)
	}
	if err := t.Error(); err != nil {
		return nil, fmt.Errorf("connect mqtt: %w", err)
	}
	return &MQTTClient{cli: cli}, nil
}

func (c *MQTTClient) Publish(topic string, payload []byte, retain bool) error {
	t := c.cli.Publish(topic, 1, retain, payload)
	if !t.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timed out", topic)
	}
	return t.Error()
}

func (c *MQTTClient) Close() {
	c.cli.Disconnect(250)
}
