// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"time"

	"geofence/internal/domain/entity"
	domainerrors "geofence/internal/domain/errors"
	"geofence/internal/domain/repository"
	"geofence/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// locationRepository implements the repository.LocationRepository interface.
type locationRepository struct {
	db *gorm.DB
}

// NewLocationRepository is the constructor for locationRepository.
func NewLocationRepository(db *gorm.DB) repository.LocationRepository {
	return &locationRepository{
		db: db,
	}
}

// CreateSample appends a new location sample to a user's history.
func (repo *locationRepository) CreateSample(ctx context.Context, sample *entity.LocationSample) error {
	sampleM := fromSampleDomain(sample)

	if err := repo.db.WithContext(ctx).Create(sampleM).Error; err != nil {
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required location information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create location sample")
	}

	// Update the entity with generated values
	sample.ID = sampleM.ID
	sample.CreatedAt = sampleM.CreatedAt

	return nil
}

// FindLatestByUser retrieves the most recent sample for a user.
func (repo *locationRepository) FindLatestByUser(ctx context.Context, userID uuid.UUID) (*entity.LocationSample, error) {
	var sampleM model.LocationSampleModel

	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		First(&sampleM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSampleNotFound
		}

		return nil, errors.Wrap(err, "failed to find latest sample")
	}

	return toSampleDomain(&sampleM), nil
}

// FindLatestBefore retrieves the most recent sample strictly older than the
// given timestamp. The strict inequality keeps the predecessor stable when the
// same sample is evaluated again.
func (repo *locationRepository) FindLatestBefore(ctx context.Context, userID uuid.UUID, ts time.Time) (*entity.LocationSample, error) {
	var sampleM model.LocationSampleModel

	if err := repo.db.WithContext(ctx).
		Where("user_id = ? AND timestamp < ?", userID, ts).
		Order("timestamp DESC").
		First(&sampleM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSampleNotFound
		}

		return nil, errors.Wrap(err, "failed to find sample before timestamp")
	}

	return toSampleDomain(&sampleM), nil
}

// FindRecentByUser retrieves up to limit samples for a user, most-recent-first.
func (repo *locationRepository) FindRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.LocationSample, error) {
	var sampleModels []*model.LocationSampleModel

	query := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&sampleModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find recent samples")
	}

	samples := make([]*entity.LocationSample, 0, len(sampleModels))
	for _, sampleM := range sampleModels {
		samples = append(samples, toSampleDomain(sampleM))
	}

	return samples, nil
}

// FindLatestPerUser retrieves the most recent sample of every user.
func (repo *locationRepository) FindLatestPerUser(ctx context.Context) ([]*entity.LocationSample, error) {
	var sampleModels []*model.LocationSampleModel

	if err := repo.db.WithContext(ctx).
		Raw(`SELECT DISTINCT ON (user_id) * FROM location_samples ORDER BY user_id, "timestamp" DESC`).
		Scan(&sampleModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find latest sample per user")
	}

	samples := make([]*entity.LocationSample, 0, len(sampleModels))
	for _, sampleM := range sampleModels {
		samples = append(samples, toSampleDomain(sampleM))
	}

	return samples, nil
}

// --- Mapper Functions ---

// toSampleDomain converts a GORM LocationSampleModel to a domain LocationSample entity.
func toSampleDomain(data *model.LocationSampleModel) *entity.LocationSample {
	if data == nil {
		return nil
	}

	return &entity.LocationSample{
		ID:         data.ID,
		UserID:     data.UserID,
		Point:      orb.Point{data.Longitude, data.Latitude},
		Accuracy:   data.Accuracy,
		Altitude:   data.Altitude,
		Heading:    data.Heading,
		Speed:      data.Speed,
		DeviceInfo: map[string]string(data.DeviceInfo),
		Timestamp:  data.Timestamp,
		CreatedAt:  data.CreatedAt,
	}
}

// fromSampleDomain converts a domain LocationSample entity to a GORM LocationSampleModel.
func fromSampleDomain(data *entity.LocationSample) *model.LocationSampleModel {
	if data == nil {
		return nil
	}

	return &model.LocationSampleModel{
		ID:         data.ID,
		UserID:     data.UserID,
		Longitude:  data.Point[0],
		Latitude:   data.Point[1],
		Accuracy:   data.Accuracy,
		Altitude:   data.Altitude,
		Heading:    data.Heading,
		Speed:      data.Speed,
		DeviceInfo: model.JSONMap(data.DeviceInfo),
		Timestamp:  data.Timestamp,
		CreatedAt:  data.CreatedAt,
	}
}
