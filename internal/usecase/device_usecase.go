package usecase

import (
	"context"

	"geofence/internal/domain/entity"

	"github.com/google/uuid"
)

// RegisterDeviceInput carries the fields for registering a push device.
type RegisterDeviceInput struct {
	FCMToken string
	DeviceID string
	Platform string
}

// DeviceUsecase manages the devices alert pushes are delivered to.
type DeviceUsecase interface {
	// RegisterDevice registers a device for a user or refreshes its token.
	RegisterDevice(ctx context.Context, userID uuid.UUID, input *RegisterDeviceInput) (*entity.UserDevice, error)

	// DeactivateDevice stops alert delivery to a device owned by the user.
	DeactivateDevice(ctx context.Context, userID, deviceID uuid.UUID) error
}
