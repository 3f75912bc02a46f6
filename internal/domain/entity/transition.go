// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// TransitionKind classifies a containment state change for a (user, area) pair.
type TransitionKind string

const (
	// TransitionEntry is raised when a user moves from outside to inside an area.
	TransitionEntry TransitionKind = "ENTRY"
	// TransitionExit is raised when a user moves from inside to outside an area.
	TransitionExit TransitionKind = "EXIT"
)

// TransitionEvent is a detected change in a (user, area) containment state.
// Events are created exactly once per detected state change and are never
// persisted as mutable state.
type TransitionEvent struct {
	UserID    uuid.UUID      `json:"user_id"`    // The user whose state changed.
	AreaID    uuid.UUID      `json:"area_id"`    // The area entered or exited.
	AreaName  string         `json:"area_name"`  // Denormalized area name for delivery.
	AlertType AlertType      `json:"alert_type"` // Severity taken from the area.
	Kind      TransitionKind `json:"kind"`       // ENTRY or EXIT.
	Timestamp time.Time      `json:"timestamp"`  // Timestamp of the sample that triggered the transition.
}

// Evaluation is the result of evaluating one location sample against the
// active area snapshot: the full containment set plus the detected transitions.
type Evaluation struct {
	ContainedAreas []uuid.UUID       `json:"contained_areas"` // Areas containing the evaluated point.
	Entries        []TransitionEvent `json:"entries"`         // OUTSIDE -> INSIDE transitions.
	Exits          []TransitionEvent `json:"exits"`           // INSIDE -> OUTSIDE transitions.
}
