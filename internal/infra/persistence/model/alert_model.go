package model

import (
	"time"

	"github.com/google/uuid"
)

// AlertLogModel is the GORM-specific struct for the 'alert_logs' table.
type AlertLogModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID       uuid.UUID `gorm:"not null;index:idx_alert_logs_on_user"`
	AreaID       uuid.UUID `gorm:"not null"`
	DeviceID     uuid.UUID `gorm:"not null"`
	Kind         string    `gorm:"type:varchar(10);not null"`
	Status       string    `gorm:"type:varchar(10);not null"`
	FCMMessageID string    `gorm:"type:varchar(255)"`
	ErrorMessage string    `gorm:"type:text"`
	SentAt       time.Time `gorm:"not null"`
}

// TableName explicitly sets the table name for GORM.
func (AlertLogModel) TableName() string {
	return "alert_logs"
}
