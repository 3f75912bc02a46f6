// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"

	"geofence/internal/domain/entity"
	"geofence/internal/errors"

	"github.com/google/uuid"
)

// Domain-specific errors for device persistence.
var (
	// ErrDeviceNotFound is returned when a device is not found.
	ErrDeviceNotFound = errors.New("device not found")
)

// DeviceRepository defines the interface for device-related database operations.
type DeviceRepository interface {
	// UpsertDevice registers a device for a user or refreshes its FCM token
	// when the (user, device) pair already exists.
	UpsertDevice(ctx context.Context, device *entity.UserDevice) error

	// FindDeviceByID retrieves a device by its unique ID.
	// Returns ErrDeviceNotFound if no such device exists.
	FindDeviceByID(ctx context.Context, id uuid.UUID) (*entity.UserDevice, error)

	// FindActiveDevicesByUser retrieves all active devices for a specific user.
	FindActiveDevicesByUser(ctx context.Context, userID uuid.UUID) ([]*entity.UserDevice, error)

	// DeactivateDevice marks a device as inactive by its ID.
	DeactivateDevice(ctx context.Context, id uuid.UUID) error

	// DeactivateTokens marks every device carrying one of the given FCM tokens
	// as inactive. Used when Firebase reports tokens as invalid.
	DeactivateTokens(ctx context.Context, tokens []string) error
}
