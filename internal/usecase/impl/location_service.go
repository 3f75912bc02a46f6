package impl

import (
	"context"
	"time"

	"geofence/config"
	"geofence/internal/domain/entity"
	domainerrors "geofence/internal/domain/errors"
	"geofence/internal/domain/repository"
	"geofence/internal/errors"
	"geofence/internal/geo"
	"geofence/internal/usecase"

	"github.com/google/uuid"
)

type locationService struct {
	locationRepo repository.LocationRepository
	areaRepo     repository.AreaRepository
	geofenceUC   usecase.GeofenceUsecase
	cfg          *config.Config
}

// NewLocationService creates a new location service instance
func NewLocationService(
	locationRepo repository.LocationRepository,
	areaRepo repository.AreaRepository,
	geofenceUC usecase.GeofenceUsecase,
	cfg *config.Config,
) usecase.LocationUsecase {
	return &locationService{
		locationRepo: locationRepo,
		areaRepo:     areaRepo,
		geofenceUC:   geofenceUC,
		cfg:          cfg,
	}
}

// RecordLocation appends a sample to the user's history and evaluates it.
// The history is append-only: a new report always creates a new record, it
// never overwrites the user's previous position.
func (s *locationService) RecordLocation(ctx context.Context, userID uuid.UUID, input *usecase.RecordLocationInput) (*usecase.RecordLocationResult, error) {
	if !geo.ValidPoint(input.Point) {
		return nil, domainerrors.ErrInvalidCoordinates.WrapMessage("record location")
	}

	ts := input.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	sample := &entity.LocationSample{
		ID:         uuid.New(),
		UserID:     userID,
		Point:      input.Point,
		Accuracy:   input.Accuracy,
		Altitude:   input.Altitude,
		Heading:    input.Heading,
		Speed:      input.Speed,
		DeviceInfo: input.DeviceInfo,
		Timestamp:  ts,
	}

	if err := s.locationRepo.CreateSample(ctx, sample); err != nil {
		return nil, domainerrors.ErrDependencyUnavailable.WrapMessage("append location sample")
	}

	// The sample is persisted at this point; evaluation is a separate step
	// and its failure does not roll the append back.
	evaluation, err := s.geofenceUC.EvaluateLocation(ctx, userID, sample.Point, sample.Timestamp)
	if err != nil {
		return nil, err
	}

	return &usecase.RecordLocationResult{
		Sample:     sample,
		Evaluation: evaluation,
	}, nil
}

// GetUserHistory retrieves a user's samples, most-recent-first.
func (s *locationService) GetUserHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.LocationSample, error) {
	limit = s.clampLimit(limit)

	samples, err := s.locationRepo.FindRecentByUser(ctx, userID, limit)
	if err != nil {
		return nil, domainerrors.ErrDependencyUnavailable.WrapMessage("load location history")
	}

	return samples, nil
}

// GetLatestLocations retrieves the most recent sample of every user.
func (s *locationService) GetLatestLocations(ctx context.Context) ([]*entity.LocationSample, error) {
	samples, err := s.locationRepo.FindLatestPerUser(ctx)
	if err != nil {
		return nil, domainerrors.ErrDependencyUnavailable.WrapMessage("load latest locations")
	}

	return samples, nil
}

// GetUsersInArea filters the latest sample per user through the geometry
// engine against the given area. The engine is the single authority here;
// no database spatial operator is consulted.
func (s *locationService) GetUsersInArea(ctx context.Context, areaID uuid.UUID) ([]*entity.LocationSample, error) {
	area, err := s.areaRepo.FindAreaByID(ctx, areaID)
	if err != nil {
		if errors.Is(err, repository.ErrAreaNotFound) {
			return nil, domainerrors.ErrAreaNotFound.WrapMessage("find users in area")
		}

		return nil, domainerrors.ErrDependencyUnavailable.WrapMessage("load area")
	}

	latest, err := s.locationRepo.FindLatestPerUser(ctx)
	if err != nil {
		return nil, domainerrors.ErrDependencyUnavailable.WrapMessage("load latest locations")
	}

	inside := make([]*entity.LocationSample, 0, len(latest))
	for _, sample := range latest {
		contained, err := geo.PointInMultiPolygon(sample.Point, area.Geometry)
		if err != nil {
			return nil, domainerrors.ErrInvalidGeometry.WrapMessage("area geometry rejected by geometry engine")
		}
		if contained {
			inside = append(inside, sample)
		}
	}

	return inside, nil
}

func (s *locationService) clampLimit(limit int) int {
	defaultLimit, maxLimit := 50, 500
	if s.cfg != nil && s.cfg.Geofence != nil {
		if s.cfg.Geofence.HistoryDefaultLimit > 0 {
			defaultLimit = s.cfg.Geofence.HistoryDefaultLimit
		}
		if s.cfg.Geofence.HistoryMaxLimit > 0 {
			maxLimit = s.cfg.Geofence.HistoryMaxLimit
		}
	}

	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}

	return limit
}
