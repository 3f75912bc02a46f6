// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"time"

	"geofence/internal/domain/entity"
	"geofence/internal/errors"

	"github.com/google/uuid"
)

// Domain-specific errors for location persistence.
var (
	// ErrSampleNotFound is returned when no location sample matches the query.
	ErrSampleNotFound = errors.New("location sample not found")
)

// LocationRepository defines the interface for location history operations.
// The history is append-only: samples are never updated or overwritten, so the
// predecessor of any sample remains stable across retries.
type LocationRepository interface {
	// CreateSample appends a new location sample to a user's history.
	CreateSample(ctx context.Context, sample *entity.LocationSample) error

	// FindLatestByUser retrieves the most recent sample for a user.
	// Returns ErrSampleNotFound if the user has no history.
	FindLatestByUser(ctx context.Context, userID uuid.UUID) (*entity.LocationSample, error)

	// FindLatestBefore retrieves the most recent sample strictly older than
	// the given timestamp for a user. Returns ErrSampleNotFound if none exists.
	FindLatestBefore(ctx context.Context, userID uuid.UUID, ts time.Time) (*entity.LocationSample, error)

	// FindRecentByUser retrieves up to limit samples for a user,
	// most-recent-first.
	FindRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.LocationSample, error)

	// FindLatestPerUser retrieves the most recent sample of every user.
	FindLatestPerUser(ctx context.Context) ([]*entity.LocationSample, error)
}
