package service

import (
	"context"
	"time"
)

// AlertEvent is the wire payload handed to the alert dispatch boundary.
// It mirrors entity.TransitionEvent plus tracing metadata; the transport
// (Pub/Sub, local HTTP) is selected by configuration.
type AlertEvent struct {
	RequestID string    `json:"request_id,omitempty"` // For distributed tracing
	UserID    string    `json:"user_id"`
	AreaID    string    `json:"area_id"`
	AreaName  string    `json:"area_name"`
	AlertType string    `json:"alert_type"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

// EventPublisher defines the interface for publishing alert events to a message queue
type EventPublisher interface {
	// PublishAlertEvent publishes a transition event for async delivery
	PublishAlertEvent(ctx context.Context, event *AlertEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
