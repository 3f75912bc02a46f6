package usecase

import (
	"context"
	"time"

	"geofence/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// RecordLocationInput carries a new position report for a user.
// Point follows (longitude, latitude) order; handlers accepting
// latitude/longitude fields reorder before building this input.
type RecordLocationInput struct {
	Point      orb.Point
	Timestamp  time.Time // Zero value means "now".
	Accuracy   *float64
	Altitude   *float64
	Heading    *float64
	Speed      *float64
	DeviceInfo map[string]string
}

// RecordLocationResult is the outcome of ingesting one sample: the persisted
// record plus the containment evaluation it triggered.
type RecordLocationResult struct {
	Sample     *entity.LocationSample `json:"location"`
	Evaluation *entity.Evaluation     `json:"evaluation"`
}

// LocationUsecase manages the append-only location history and the ingestion
// path that feeds the geofence engine.
type LocationUsecase interface {
	// RecordLocation appends a sample to the user's history and then runs the
	// geofence evaluation for it. The append and the evaluation are separate
	// steps: an evaluation failure never rolls back the persisted sample.
	RecordLocation(ctx context.Context, userID uuid.UUID, input *RecordLocationInput) (*RecordLocationResult, error)

	// GetUserHistory retrieves a user's samples, most-recent-first.
	// A non-positive limit selects the configured default page size.
	GetUserHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.LocationSample, error)

	// GetLatestLocations retrieves the most recent sample of every user.
	GetLatestLocations(ctx context.Context) ([]*entity.LocationSample, error)

	// GetUsersInArea retrieves the latest sample of every user whose current
	// position lies inside the given area, resolved with the geometry engine.
	GetUsersInArea(ctx context.Context, areaID uuid.UUID) ([]*entity.LocationSample, error)
}
