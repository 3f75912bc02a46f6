// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"geofence/internal/domain/entity"
	domainerrors "geofence/internal/domain/errors"
	"geofence/internal/domain/repository"
	"geofence/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// areaRepository implements the repository.AreaRepository interface.
type areaRepository struct {
	db *gorm.DB
}

// NewAreaRepository is the constructor for areaRepository.
func NewAreaRepository(db *gorm.DB) repository.AreaRepository {
	return &areaRepository{
		db: db,
	}
}

// CreateArea persists a new monitored area.
func (repo *areaRepository) CreateArea(ctx context.Context, area *entity.Area) error {
	areaM := fromAreaDomain(area)

	if err := repo.db.WithContext(ctx).Create(areaM).Error; err != nil {
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required area information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create area")
	}

	// Update the entity with generated values
	area.ID = areaM.ID
	area.CreatedAt = areaM.CreatedAt
	area.UpdatedAt = areaM.UpdatedAt

	return nil
}

// FindAreaByID retrieves an area by its unique ID.
func (repo *areaRepository) FindAreaByID(ctx context.Context, id uuid.UUID) (*entity.Area, error) {
	var areaM model.AreaModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&areaM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAreaNotFound
		}

		return nil, errors.Wrap(err, "failed to find area by ID")
	}

	return toAreaDomain(&areaM), nil
}

// FindAllAreas retrieves every area regardless of status.
func (repo *areaRepository) FindAllAreas(ctx context.Context) ([]*entity.Area, error) {
	var areaModels []*model.AreaModel

	if err := repo.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&areaModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find areas")
	}

	return toAreaDomainSlice(areaModels), nil
}

// FindActiveAreas retrieves the active areas ordered by creation time so that
// every caller observes the same snapshot order.
func (repo *areaRepository) FindActiveAreas(ctx context.Context) ([]*entity.Area, error) {
	var areaModels []*model.AreaModel

	if err := repo.db.WithContext(ctx).
		Where("status = ?", string(entity.AreaStatusActive)).
		Order("created_at ASC").
		Find(&areaModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find active areas")
	}

	return toAreaDomainSlice(areaModels), nil
}

// UpdateArea updates an existing area record.
func (repo *areaRepository) UpdateArea(ctx context.Context, area *entity.Area) error {
	areaM := fromAreaDomain(area)

	result := repo.db.WithContext(ctx).
		Model(&model.AreaModel{}).
		Where("id = ?", area.ID).
		Updates(map[string]interface{}{
			"name":        areaM.Name,
			"description": areaM.Description,
			"geometry":    areaM.Geometry,
			"status":      areaM.Status,
			"alert_type":  areaM.AlertType,
			"properties":  areaM.Properties,
		})

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update area")
	}

	if result.RowsAffected == 0 {
		return repository.ErrAreaNotFound
	}

	return nil
}

// DeleteArea removes an area by its ID.
func (repo *areaRepository) DeleteArea(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.AreaModel{})

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete area")
	}

	if result.RowsAffected == 0 {
		return repository.ErrAreaNotFound
	}

	return nil
}

// --- Mapper Functions ---

// toAreaDomain converts a GORM AreaModel to a domain Area entity.
func toAreaDomain(data *model.AreaModel) *entity.Area {
	if data == nil {
		return nil
	}

	return &entity.Area{
		ID:          data.ID,
		Name:        data.Name,
		Description: data.Description,
		Geometry:    orb.MultiPolygon(data.Geometry),
		Status:      entity.AreaStatus(data.Status),
		AlertType:   entity.AlertType(data.AlertType),
		Properties:  map[string]string(data.Properties),
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}

func toAreaDomainSlice(data []*model.AreaModel) []*entity.Area {
	areas := make([]*entity.Area, 0, len(data))
	for _, areaM := range data {
		areas = append(areas, toAreaDomain(areaM))
	}

	return areas
}

// fromAreaDomain converts a domain Area entity to a GORM AreaModel.
func fromAreaDomain(data *entity.Area) *model.AreaModel {
	if data == nil {
		return nil
	}

	return &model.AreaModel{
		ID:          data.ID,
		Name:        data.Name,
		Description: data.Description,
		Geometry:    model.GeoJSONMultiPolygon(data.Geometry),
		Status:      string(data.Status),
		AlertType:   string(data.AlertType),
		Properties:  model.JSONMap(data.Properties),
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}
