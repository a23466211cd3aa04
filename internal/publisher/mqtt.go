package publisher

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/real-ds/IOT-ADAS/internal/hazard"
)

// DefaultStatusTopic is the topic status records are published to. Records
// are retained so a late subscriber immediately sees the current state.
const DefaultStatusTopic = "adas/status"

// MQTTConfig holds the broker connection settings for the MQTT sink.
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
}

// MQTTSink publishes every status record to an MQTT broker as a push-based
// alternative to polling the HTTP API.
type MQTTSink struct {
	client mqtt.Client
	topic  string
}

// NewMQTTSink connects to the broker and returns a sink for status records.
func NewMQTTSink(config MQTTConfig) (*MQTTSink, error) {
	if config.Topic == "" {
		config.Topic = DefaultStatusTopic
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.Broker)
	opts.SetClientID(config.ClientID)
	opts.SetUsername(config.Username)
	opts.SetPassword(config.Password)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &MQTTSink{client: client, topic: config.Topic}, nil
}

// Publish sends the record to the status topic at QoS 1, retained.
func (s *MQTTSink) Publish(record *hazard.StatusRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal status record: %w", err)
	}

	token := s.client.Publish(s.topic, 1, true, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to publish status record: %w", token.Error())
	}
	return nil
}

// Close disconnects from the broker.
func (s *MQTTSink) Close() {
	s.client.Disconnect(250)
}
