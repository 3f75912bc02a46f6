package impl

import (
	"context"

	domainerrors "geofence/internal/domain/errors"
	"geofence/internal/domain/repository"
	"geofence/internal/usecase"
)

type mapService struct {
	areaRepo     repository.AreaRepository
	locationRepo repository.LocationRepository
}

// NewMapService creates a new map service instance
func NewMapService(areaRepo repository.AreaRepository, locationRepo repository.LocationRepository) usecase.MapUsecase {
	return &mapService{
		areaRepo:     areaRepo,
		locationRepo: locationRepo,
	}
}

// GetMapData retrieves the active areas and the latest sample per user.
func (s *mapService) GetMapData(ctx context.Context) (*usecase.MapData, error) {
	areas, err := s.areaRepo.FindActiveAreas(ctx)
	if err != nil {
		return nil, domainerrors.ErrDependencyUnavailable.WrapMessage("load active areas")
	}

	locations, err := s.locationRepo.FindLatestPerUser(ctx)
	if err != nil {
		return nil, domainerrors.ErrDependencyUnavailable.WrapMessage("load latest locations")
	}

	return &usecase.MapData{
		Areas:     areas,
		Locations: locations,
	}, nil
}
