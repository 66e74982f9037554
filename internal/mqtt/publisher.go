package mqtt

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"moonwatch/internal/storage"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type Publisher struct {
	client      mqtt.Client
	topicPrefix string
	enabled     bool
}

type PublisherConfig struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	Enabled     bool
}

func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	if !cfg.Enabled {
		return &Publisher{enabled: false}, nil
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetConnectionLostHandler(func(c mqtt.Client, err error) {
			log.Printf("MQTT connection lost: %v", err)
		}).
		SetOnConnectHandler(func(c mqtt.Client) {
			log.Println("MQTT connected")
		})

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &Publisher{
		client:      client,
		topicPrefix: cfg.TopicPrefix,
		enabled:     true,
	}, nil
}

// Publish sends the day's figures as individual topics plus a retained JSON
// status message, so late subscribers still see the current report.
func (p *Publisher) Publish(report *storage.MoonReport) error {
	if !p.enabled {
		return nil
	}

	topics := map[string]interface{}{
		"computable":   report.Computable,
		"total_hours":  report.TotalHours,
		"day_hours":    report.DayHours,
		"night_hours":  report.NightHours,
		"phase_name":   report.PhaseName,
		"phase_age":    report.PhaseAge,
		"illumination": report.Illumination,
		"date":         report.Date.Format("2006-01-02"),
	}

	for name, value := range topics {
		topic := fmt.Sprintf("%s/moon/%s", p.topicPrefix, name)
		payload := fmt.Sprintf("%v", value)
		token := p.client.Publish(topic, 0, false, payload)
		token.Wait()
		if token.Error() != nil {
			log.Printf("Failed to publish to %s: %v", topic, token.Error())
		}
	}

	statusJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	statusTopic := fmt.Sprintf("%s/moon/report", p.topicPrefix)
	token := p.client.Publish(statusTopic, 0, true, statusJSON)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish report: %w", token.Error())
	}

	return nil
}

func (p *Publisher) Close() {
	if p.enabled && p.client != nil {
		p.client.Disconnect(250)
	}
}
