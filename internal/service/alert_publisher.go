package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Josh-Wiegman/cue-rms/pkg/kafka"
)

// AlertEvent is the wire shape of a planner alert on the alert topic.
type AlertEvent struct {
	EventID    string    `json:"event_id"`
	TenantID   string    `json:"tenant_id"`
	Kind       string    `json:"kind"` // crew_conflict | wof_alert
	Subject    string    `json:"subject"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AlertPublisher defines the interface for publishing planner alerts
type AlertPublisher interface {
	// PublishCrewConflict publishes one crew double-booking warning
	PublishCrewConflict(ctx context.Context, tenantID, eventID, message string) error

	// PublishWOFAlert publishes one vehicle WOF expiry alert
	PublishWOFAlert(ctx context.Context, tenantID, vehicleID, message string) error

	// Close closes the alert publisher
	Close() error
}

// KafkaAlertPublisher implements AlertPublisher using Kafka
type KafkaAlertPublisher struct {
	producer    *kafka.Producer
	topic       string
	serviceName string
}

// AlertPublisherConfig contains configuration for the alert publisher
type AlertPublisherConfig struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
}

// NewKafkaAlertPublisher creates a new Kafka alert publisher
func NewKafkaAlertPublisher(ctx context.Context, cfg *AlertPublisherConfig) (*KafkaAlertPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("alert publisher config is required")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "planner-alerts"
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "cue-rms"
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "cue-rms-alert-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
		LingerMs:      10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaAlertPublisher{
		producer:    producer,
		topic:       topic,
		serviceName: serviceName,
	}, nil
}

// PublishCrewConflict publishes one crew double-booking warning
func (p *KafkaAlertPublisher) PublishCrewConflict(ctx context.Context, tenantID, eventID, message string) error {
	return p.publish(ctx, &AlertEvent{
		EventID:    eventID,
		TenantID:   tenantID,
		Kind:       "crew_conflict",
		Subject:    eventID,
		Message:    message,
		OccurredAt: time.Now(),
	})
}

// PublishWOFAlert publishes one vehicle WOF expiry alert
func (p *KafkaAlertPublisher) PublishWOFAlert(ctx context.Context, tenantID, vehicleID, message string) error {
	return p.publish(ctx, &AlertEvent{
		EventID:    uuid.New().String(),
		TenantID:   tenantID,
		Kind:       "wof_alert",
		Subject:    vehicleID,
		Message:    message,
		OccurredAt: time.Now(),
	})
}

// Close closes the alert publisher
func (p *KafkaAlertPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

func (p *KafkaAlertPublisher) publish(ctx context.Context, alert *AlertEvent) error {
	value, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	msg := &kafka.Message{
		Topic: p.topic,
		Key:   []byte(alert.TenantID + ":" + alert.Subject),
		Value: value,
		Headers: map[string]string{
			"alert_kind":   alert.Kind,
			"source":       p.serviceName,
			"content_type": "application/json",
		},
	}

	if err := p.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s alert: %w", alert.Kind, err)
	}

	return nil
}

// NoOpAlertPublisher is a no-op implementation of AlertPublisher for
// environments without a broker and for tests.
type NoOpAlertPublisher struct{}

// NewNoOpAlertPublisher creates a new no-op alert publisher
func NewNoOpAlertPublisher() *NoOpAlertPublisher {
	return &NoOpAlertPublisher{}
}

// PublishCrewConflict is a no-op
func (p *NoOpAlertPublisher) PublishCrewConflict(ctx context.Context, tenantID, eventID, message string) error {
	return nil
}

// PublishWOFAlert is a no-op
func (p *NoOpAlertPublisher) PublishWOFAlert(ctx context.Context, tenantID, vehicleID, message string) error {
	return nil
}

// Close is a no-op
func (p *NoOpAlertPublisher) Close() error {
	return nil
}
