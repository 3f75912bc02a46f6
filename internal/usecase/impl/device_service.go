package impl

import (
	"context"
	"time"

	"geofence/internal/domain/entity"
	domainerrors "geofence/internal/domain/errors"
	"geofence/internal/domain/repository"
	"geofence/internal/errors"
	"geofence/internal/usecase"

	"github.com/google/uuid"
)

// ErrDeviceOwnership is returned when a user tries to manage a device they do not own.
var ErrDeviceOwnership = errors.New("device does not belong to this user")

type deviceService struct {
	deviceRepo repository.DeviceRepository
}

// NewDeviceService creates a new device service instance
func NewDeviceService(deviceRepo repository.DeviceRepository) usecase.DeviceUsecase {
	return &deviceService{
		deviceRepo: deviceRepo,
	}
}

// RegisterDevice registers a device for a user or refreshes its token.
func (s *deviceService) RegisterDevice(ctx context.Context, userID uuid.UUID, input *usecase.RegisterDeviceInput) (*entity.UserDevice, error) {
	device := &entity.UserDevice{
		ID:        uuid.New(),
		UserID:    userID,
		FCMToken:  input.FCMToken,
		DeviceID:  input.DeviceID,
		Platform:  input.Platform,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := s.deviceRepo.UpsertDevice(ctx, device); err != nil {
		return nil, domainerrors.ErrDependencyUnavailable.WrapMessage("register device")
	}

	return device, nil
}

// DeactivateDevice stops alert delivery to a device owned by the user.
func (s *deviceService) DeactivateDevice(ctx context.Context, userID, deviceID uuid.UUID) error {
	device, err := s.deviceRepo.FindDeviceByID(ctx, deviceID)
	if err != nil {
		if errors.Is(err, repository.ErrDeviceNotFound) {
			return domainerrors.ErrDeviceNotFound.WrapMessage("deactivate device")
		}

		return domainerrors.ErrDependencyUnavailable.WrapMessage("load device")
	}

	if device.UserID != userID {
		return ErrDeviceOwnership
	}

	if err := s.deviceRepo.DeactivateDevice(ctx, deviceID); err != nil {
		return domainerrors.ErrDependencyUnavailable.WrapMessage("deactivate device")
	}

	return nil
}
