package model

import (
	"time"

	"github.com/google/uuid"
)

// LocationSampleModel is the GORM-specific struct for the 'location_samples'
// table. Rows are append-only; there is no update path for this table.
type LocationSampleModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID     uuid.UUID `gorm:"not null;index:idx_location_samples_on_user_ts,priority:1"`
	Longitude  float64   `gorm:"type:decimal(11,8);not null"`
	Latitude   float64   `gorm:"type:decimal(10,8);not null"`
	Accuracy   *float64  `gorm:"type:decimal(10,3)"`
	Altitude   *float64  `gorm:"type:decimal(10,3)"`
	Heading    *float64  `gorm:"type:decimal(6,3)"`
	Speed      *float64  `gorm:"type:decimal(8,3)"`
	DeviceInfo JSONMap   `gorm:"type:jsonb"`
	Timestamp  time.Time `gorm:"not null;index:idx_location_samples_on_user_ts,priority:2,sort:desc"`
	CreatedAt  time.Time
}

// TableName explicitly sets the table name for GORM.
func (LocationSampleModel) TableName() string {
	return "location_samples"
}
