// Package usecase defines the application-layer interfaces and their
// input/output types. Implementations live in usecase/impl.
package usecase

import (
	"context"
	"time"

	"geofence/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// UserAreasResult reports which areas a user's latest sample falls inside.
type UserAreasResult struct {
	Sample *entity.LocationSample `json:"user_location"` // The sample that was evaluated.
	Areas  []*entity.Area         `json:"areas"`         // Areas containing the sample's point.
}

// GeofenceUsecase is the containment and transition detection engine.
type GeofenceUsecase interface {
	// EvaluateLocation resolves the containment set for a user's sample,
	// diffs it against the immediately preceding sample, and dispatches
	// ENTRY events (EXIT dispatch is configuration-gated). The sample itself
	// must already be persisted; this call never writes history.
	//
	// Evaluations for the same user are strictly serialized; evaluations for
	// different users run in parallel. Re-evaluating the same
	// (sample, predecessor) pair yields the identical result.
	EvaluateLocation(ctx context.Context, userID uuid.UUID, point orb.Point, ts time.Time) (*entity.Evaluation, error)

	// CheckUserAreas resolves the user's latest stored sample against the
	// active area snapshot without emitting any events.
	CheckUserAreas(ctx context.Context, userID uuid.UUID) (*UserAreasResult, error)

	// ResolvePoint resolves an arbitrary point against the active area
	// snapshot. Nothing is persisted and no events are emitted.
	ResolvePoint(ctx context.Context, point orb.Point) ([]*entity.Area, error)
}
