package model

import (
	"time"

	"github.com/google/uuid"
)

// AreaModel is the GORM-specific struct for the 'areas' table.
type AreaModel struct {
	ID          uuid.UUID           `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Name        string              `gorm:"type:varchar(255);not null"`
	Description string              `gorm:"type:text"`
	Geometry    GeoJSONMultiPolygon `gorm:"type:jsonb;not null"`
	Status      string              `gorm:"type:varchar(20);not null;default:'active';index:idx_areas_on_status"`
	AlertType   string              `gorm:"type:varchar(20);not null;default:'standard'"`
	Properties  JSONMap             `gorm:"type:jsonb"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (AreaModel) TableName() string {
	return "areas"
}
