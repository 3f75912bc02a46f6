// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// AreaStatus indicates whether an area participates in containment checks.
type AreaStatus string

const (
	// AreaStatusActive marks an area as monitored.
	AreaStatusActive AreaStatus = "active"
	// AreaStatusInactive marks an area as ignored by the resolver.
	AreaStatusInactive AreaStatus = "inactive"
)

// AlertType classifies the severity of alerts raised for an area.
type AlertType string

const (
	AlertTypeInfo     AlertType = "info"
	AlertTypeWarning  AlertType = "warning"
	AlertTypeDanger   AlertType = "danger"
	AlertTypeStandard AlertType = "standard"
)

// Area is a named polygonal region monitored for user presence.
// Geometry is stored as a multipolygon; a plain polygon is normalized to a
// single-element multipolygon at the boundary. Coordinates follow the GeoJSON
// (longitude, latitude) order throughout.
type Area struct {
	ID          uuid.UUID         `json:"id"`          // The Global Unique Identifier (GUID) for the area.
	Name        string            `json:"name"`        // Human-readable area name.
	Description string            `json:"description"` // Optional free-form description.
	Geometry    orb.MultiPolygon  `json:"-"`           // The monitored region; serialized as GeoJSON at the boundaries.
	Status      AreaStatus        `json:"status"`      // active areas participate in containment, inactive ones do not.
	AlertType   AlertType         `json:"alert_type"`  // Severity attached to alerts raised for this area.
	Properties  map[string]string `json:"properties"`  // Extensible key-value metadata, not interpreted by the core.
	CreatedAt   time.Time         `json:"created_at"`  // Timestamp of when this area was created.
	UpdatedAt   time.Time         `json:"updated_at"`  // Timestamp of the last modification.
}

// IsActive reports whether the area participates in containment resolution.
func (a *Area) IsActive() bool {
	return a.Status == AreaStatusActive
}
