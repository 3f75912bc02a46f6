// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"geofence/internal/domain/entity"
	"geofence/internal/errors"

	"github.com/google/uuid"
)

// Domain-specific errors for area persistence.
var (
	// ErrAreaNotFound is returned when an area is not found.
	ErrAreaNotFound = errors.New("area not found")
)

// AreaRepository defines the interface for area-related database operations.
type AreaRepository interface {
	// CreateArea persists a new monitored area.
	CreateArea(ctx context.Context, area *entity.Area) error

	// FindAreaByID retrieves an area by its unique ID.
	// Returns ErrAreaNotFound if no such area exists.
	FindAreaByID(ctx context.Context, id uuid.UUID) (*entity.Area, error)

	// FindAllAreas retrieves all areas regardless of status.
	FindAllAreas(ctx context.Context) ([]*entity.Area, error)

	// FindActiveAreas retrieves the snapshot of active areas used for
	// containment resolution, ordered by creation time for determinism.
	FindActiveAreas(ctx context.Context) ([]*entity.Area, error)

	// UpdateArea updates an existing area record.
	UpdateArea(ctx context.Context, area *entity.Area) error

	// DeleteArea removes an area by its ID.
	DeleteArea(ctx context.Context, id uuid.UUID) error
}
