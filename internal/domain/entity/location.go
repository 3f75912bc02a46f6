// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// LocationSample is a single immutable position report for a user.
// Samples are append-only; "current" and "previous" are always determined by
// timestamp order per user, never by overwriting an existing record.
type LocationSample struct {
	ID         uuid.UUID         `json:"id"`                   // The Global Unique Identifier (GUID) for the sample.
	UserID     uuid.UUID         `json:"user_id"`              // The ID of the user this sample belongs to.
	Point      orb.Point         `json:"point"`                // Position as (longitude, latitude).
	Accuracy   *float64          `json:"accuracy,omitempty"`   // Horizontal accuracy in meters, if reported.
	Altitude   *float64          `json:"altitude,omitempty"`   // Altitude in meters, if reported.
	Heading    *float64          `json:"heading,omitempty"`    // Heading in degrees, if reported.
	Speed      *float64          `json:"speed,omitempty"`      // Speed in m/s, if reported.
	DeviceInfo map[string]string `json:"device_info,omitempty"` // Client-supplied device metadata.
	Timestamp  time.Time         `json:"timestamp"`            // When the position was observed.
	CreatedAt  time.Time         `json:"created_at"`           // When this record was persisted.
}
