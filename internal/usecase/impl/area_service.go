package impl

import (
	"context"
	"time"

	"geofence/internal/domain/entity"
	domainerrors "geofence/internal/domain/errors"
	"geofence/internal/domain/repository"
	"geofence/internal/errors"
	"geofence/internal/geo"
	"geofence/internal/usecase"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

type areaService struct {
	areaRepo repository.AreaRepository
}

// NewAreaService creates a new area service instance
func NewAreaService(areaRepo repository.AreaRepository) usecase.AreaUsecase {
	return &areaService{
		areaRepo: areaRepo,
	}
}

// AddArea validates the geometry and persists a new area.
func (s *areaService) AddArea(ctx context.Context, input *usecase.AddAreaInput) (*entity.Area, error) {
	geometry, err := toMultiPolygon(input.Geometry)
	if err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = entity.AreaStatusActive
	}
	alertType := input.AlertType
	if alertType == "" {
		alertType = entity.AlertTypeStandard
	}

	area := &entity.Area{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		Geometry:    geometry,
		Status:      status,
		AlertType:   alertType,
		Properties:  input.Properties,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := s.areaRepo.CreateArea(ctx, area); err != nil {
		return nil, domainerrors.ErrDependencyUnavailable.WrapMessage("create area")
	}

	return area, nil
}

// GetArea retrieves a single area by ID.
func (s *areaService) GetArea(ctx context.Context, id uuid.UUID) (*entity.Area, error) {
	area, err := s.areaRepo.FindAreaByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAreaNotFound) {
			return nil, domainerrors.ErrAreaNotFound.WrapMessage("get area")
		}

		return nil, domainerrors.ErrDependencyUnavailable.WrapMessage("load area")
	}

	return area, nil
}

// ListAreas retrieves all areas regardless of status.
func (s *areaService) ListAreas(ctx context.Context) ([]*entity.Area, error) {
	areas, err := s.areaRepo.FindAllAreas(ctx)
	if err != nil {
		return nil, domainerrors.ErrDependencyUnavailable.WrapMessage("list areas")
	}

	return areas, nil
}

// UpdateArea applies the given partial update to an area.
func (s *areaService) UpdateArea(ctx context.Context, id uuid.UUID, input *usecase.UpdateAreaInput) (*entity.Area, error) {
	area, err := s.areaRepo.FindAreaByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAreaNotFound) {
			return nil, domainerrors.ErrAreaNotFound.WrapMessage("update area")
		}

		return nil, domainerrors.ErrDependencyUnavailable.WrapMessage("load area")
	}

	if err := s.applyAreaUpdates(area, input); err != nil {
		return nil, err
	}

	if err := s.areaRepo.UpdateArea(ctx, area); err != nil {
		return nil, domainerrors.ErrDependencyUnavailable.WrapMessage("update area")
	}

	return area, nil
}

// applyAreaUpdates applies the update input to an area.
func (s *areaService) applyAreaUpdates(area *entity.Area, input *usecase.UpdateAreaInput) error {
	if input.Name != nil {
		area.Name = *input.Name
	}
	if input.Description != nil {
		area.Description = *input.Description
	}
	if input.Geometry != nil {
		geometry, err := toMultiPolygon(input.Geometry)
		if err != nil {
			return err
		}
		area.Geometry = geometry
	}
	if input.Status != nil {
		area.Status = *input.Status
	}
	if input.AlertType != nil {
		area.AlertType = *input.AlertType
	}
	if input.Properties != nil {
		area.Properties = input.Properties
	}
	area.UpdatedAt = time.Now().UTC()

	return nil
}

// DeleteArea removes an area by ID.
func (s *areaService) DeleteArea(ctx context.Context, id uuid.UUID) error {
	if _, err := s.areaRepo.FindAreaByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrAreaNotFound) {
			return domainerrors.ErrAreaNotFound.WrapMessage("delete area")
		}

		return domainerrors.ErrDependencyUnavailable.WrapMessage("load area")
	}

	if err := s.areaRepo.DeleteArea(ctx, id); err != nil {
		return domainerrors.ErrDependencyUnavailable.WrapMessage("delete area")
	}

	return nil
}

// toMultiPolygon normalizes incoming geometry to a validated multipolygon.
// Plain polygons become a single-element multipolygon; any other geometry
// type and any degenerate ring is rejected.
func toMultiPolygon(geometry orb.Geometry) (orb.MultiPolygon, error) {
	var mp orb.MultiPolygon

	switch g := geometry.(type) {
	case orb.Polygon:
		mp = orb.MultiPolygon{g}
	case orb.MultiPolygon:
		mp = g
	default:
		return nil, domainerrors.ErrInvalidGeometry.WithDetails("geometry must be a Polygon or MultiPolygon")
	}

	if err := geo.ValidateMultiPolygon(mp); err != nil {
		return nil, domainerrors.ErrInvalidGeometry.WrapMessage("validate geometry")
	}

	return mp, nil
}
