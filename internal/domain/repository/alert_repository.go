// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"

	"geofence/internal/domain/entity"

	"github.com/google/uuid"
)

// AlertRepository defines the interface for alert delivery log operations.
type AlertRepository interface {
	// CreateAlertLog records the delivery outcome of one event to one device.
	CreateAlertLog(ctx context.Context, log *entity.AlertLog) error

	// FindAlertsByUser retrieves up to limit delivery logs for a user,
	// most-recent-first.
	FindAlertsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.AlertLog, error)
}
