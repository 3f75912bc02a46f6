package usecase

import (
	"context"

	"geofence/internal/domain/entity"
)

// MapData bundles everything a map client needs to render the current state:
// the active areas and each user's latest position.
type MapData struct {
	Areas     []*entity.Area           `json:"areas"`
	Locations []*entity.LocationSample `json:"locations"`
}

// MapUsecase serves read-only data for map rendering.
type MapUsecase interface {
	// GetMapData retrieves the active areas and the latest sample per user.
	GetMapData(ctx context.Context) (*MapData, error)
}
