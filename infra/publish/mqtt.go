package publish

import (
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/demandcast/infra/logger"
)

var errPublishFailed = errors.New("publish failed")

// Config defines the MQTT endpoint the staffing plan is published to.
type Config struct {
	Enabled  bool   `json:"enabled"`
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Topic    string `json:"topic"`
	QoS      byte   `json:"qos"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "demandcast"
	}
	if c.Topic == "" {
		c.Topic = "demandcast/plan"
	}
}

// MQTTPublisher publishes staffing plans over MQTT, one retained message
// per run so late subscribers see the latest plan.
type MQTTPublisher struct {
	client mqtt.Client
	topic  string
	qos    byte
	log    logger.Logger
}

// NewMQTTPublisher connects to the broker described by cfg.
func NewMQTTPublisher(cfg Config) (*MQTTPublisher, error) {
	cfg.SetDefaults()
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true)
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return &MQTTPublisher{
		client: client,
		topic:  cfg.Topic,
		qos:    cfg.QoS,
		log:    logger.New("plan-publisher"),
	}, nil
}

// PublishPlan sends the payload to the per-run topic.
func (p *MQTTPublisher) PublishPlan(runID string, payload []byte) error {
	topic := fmt.Sprintf("%s/%s", p.topic, runID)
	token := p.client.Publish(topic, p.qos, true, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish plan: %w", err)
	}
	p.log.Infof("published plan %s to %s", runID, topic)
	return nil
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	if p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
