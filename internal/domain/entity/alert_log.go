// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Alert delivery statuses recorded by the worker.
const (
	AlertStatusSent   = "sent"
	AlertStatusFailed = "failed"
)

// AlertLog records the delivery outcome of one transition event to one device.
type AlertLog struct {
	ID           uuid.UUID      `json:"id"`             // The Global Unique Identifier (GUID) for the log entry.
	UserID       uuid.UUID      `json:"user_id"`       // The user the alert was delivered to.
	AreaID       uuid.UUID      `json:"area_id"`       // The area the transition refers to.
	DeviceID     uuid.UUID      `json:"device_id"`     // The device the push was sent to.
	Kind         TransitionKind `json:"kind"`          // ENTRY or EXIT.
	Status       string         `json:"status"`        // sent or failed.
	FCMMessageID string         `json:"fcm_message_id"` // Firebase message id on success.
	ErrorMessage string         `json:"error_message"` // Failure reason, if any.
	SentAt       time.Time      `json:"sent_at"`       // When delivery was attempted.
}
