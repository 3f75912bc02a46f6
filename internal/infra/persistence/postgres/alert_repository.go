// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"geofence/internal/domain/entity"
	domainerrors "geofence/internal/domain/errors"
	"geofence/internal/domain/repository"
	"geofence/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// alertRepository implements the repository.AlertRepository interface.
type alertRepository struct {
	db *gorm.DB
}

// NewAlertRepository is the constructor for alertRepository.
func NewAlertRepository(db *gorm.DB) repository.AlertRepository {
	return &alertRepository{
		db: db,
	}
}

// CreateAlertLog records the delivery outcome of one event to one device.
func (repo *alertRepository) CreateAlertLog(ctx context.Context, log *entity.AlertLog) error {
	logM := fromAlertLogDomain(log)

	if err := repo.db.WithContext(ctx).Create(logM).Error; err != nil {
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required alert log information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create alert log")
	}

	// Update the entity with generated values
	log.ID = logM.ID
	log.SentAt = logM.SentAt

	return nil
}

// FindAlertsByUser retrieves up to limit delivery logs for a user,
// most-recent-first.
func (repo *alertRepository) FindAlertsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.AlertLog, error) {
	var logModels []*model.AlertLogModel

	query := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("sent_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&logModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find alert logs by user")
	}

	logs := make([]*entity.AlertLog, 0, len(logModels))
	for _, logM := range logModels {
		logs = append(logs, toAlertLogDomain(logM))
	}

	return logs, nil
}

// --- Mapper Functions ---

// toAlertLogDomain converts a GORM AlertLogModel to a domain AlertLog entity.
func toAlertLogDomain(data *model.AlertLogModel) *entity.AlertLog {
	if data == nil {
		return nil
	}

	return &entity.AlertLog{
		ID:           data.ID,
		UserID:       data.UserID,
		AreaID:       data.AreaID,
		DeviceID:     data.DeviceID,
		Kind:         entity.TransitionKind(data.Kind),
		Status:       data.Status,
		FCMMessageID: data.FCMMessageID,
		ErrorMessage: data.ErrorMessage,
		SentAt:       data.SentAt,
	}
}

// fromAlertLogDomain converts a domain AlertLog entity to a GORM AlertLogModel.
func fromAlertLogDomain(data *entity.AlertLog) *model.AlertLogModel {
	if data == nil {
		return nil
	}

	return &model.AlertLogModel{
		ID:           data.ID,
		UserID:       data.UserID,
		AreaID:       data.AreaID,
		DeviceID:     data.DeviceID,
		Kind:         string(data.Kind),
		Status:       data.Status,
		FCMMessageID: data.FCMMessageID,
		ErrorMessage: data.ErrorMessage,
		SentAt:       data.SentAt,
	}
}
