package impl

import (
	"context"
	"testing"

	"geofence/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterDeviceAndRefreshToken(t *testing.T) {
	deviceRepo := &mockDeviceRepo{}
	svc := NewDeviceService(deviceRepo)

	userID := uuid.New()
	device, err := svc.RegisterDevice(context.Background(), userID, &usecase.RegisterDeviceInput{
		FCMToken: "token-1",
		DeviceID: "pixel-8",
		Platform: "android",
	})
	require.NoError(t, err)
	assert.True(t, device.IsActive)

	// Same (user, device) pair with a fresh token updates in place.
	refreshed, err := svc.RegisterDevice(context.Background(), userID, &usecase.RegisterDeviceInput{
		FCMToken: "token-2",
		DeviceID: "pixel-8",
		Platform: "android",
	})
	require.NoError(t, err)
	assert.Equal(t, device.ID, refreshed.ID)
	assert.Equal(t, "token-2", refreshed.FCMToken)

	devices, err := deviceRepo.FindActiveDevicesByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, devices, 1)
}

func TestDeactivateDeviceOwnershipEnforced(t *testing.T) {
	deviceRepo := &mockDeviceRepo{}
	svc := NewDeviceService(deviceRepo)

	owner := uuid.New()
	device, err := svc.RegisterDevice(context.Background(), owner, &usecase.RegisterDeviceInput{
		FCMToken: "token-1",
		DeviceID: "pixel-8",
		Platform: "android",
	})
	require.NoError(t, err)

	err = svc.DeactivateDevice(context.Background(), uuid.New(), device.ID)
	require.ErrorIs(t, err, ErrDeviceOwnership)

	require.NoError(t, svc.DeactivateDevice(context.Background(), owner, device.ID))

	devices, err := deviceRepo.FindActiveDevicesByUser(context.Background(), owner)
	require.NoError(t, err)
	assert.Empty(t, devices)
}

func TestDeactivateUnknownDevice(t *testing.T) {
	svc := NewDeviceService(&mockDeviceRepo{})

	err := svc.DeactivateDevice(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
}
