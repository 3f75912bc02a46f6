package usecase

import (
	"context"

	"geofence/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// AddAreaInput carries the fields for a new monitored area.
type AddAreaInput struct {
	Name        string
	Description string
	Geometry    orb.Geometry // Polygon or MultiPolygon; anything else is rejected.
	Status      entity.AreaStatus
	AlertType   entity.AlertType
	Properties  map[string]string
}

// UpdateAreaInput carries partial updates for an area; nil fields are left
// unchanged.
type UpdateAreaInput struct {
	Name        *string
	Description *string
	Geometry    orb.Geometry
	Status      *entity.AreaStatus
	AlertType   *entity.AlertType
	Properties  map[string]string
}

// AreaUsecase manages the monitored area catalog.
type AreaUsecase interface {
	// AddArea validates the geometry and persists a new area.
	AddArea(ctx context.Context, input *AddAreaInput) (*entity.Area, error)

	// GetArea retrieves a single area by ID.
	GetArea(ctx context.Context, id uuid.UUID) (*entity.Area, error)

	// ListAreas retrieves all areas regardless of status.
	ListAreas(ctx context.Context) ([]*entity.Area, error)

	// UpdateArea applies the given partial update to an area.
	UpdateArea(ctx context.Context, id uuid.UUID, input *UpdateAreaInput) (*entity.Area, error)

	// DeleteArea removes an area by ID.
	DeleteArea(ctx context.Context, id uuid.UUID) error
}
