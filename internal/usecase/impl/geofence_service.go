package impl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"geofence/config"
	deliverycontext "geofence/internal/delivery/context"
	"geofence/internal/domain/entity"
	domainerrors "geofence/internal/domain/errors"
	"geofence/internal/domain/repository"
	"geofence/internal/domain/service"
	"geofence/internal/errors"
	"geofence/internal/geo"
	"geofence/internal/usecase"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

type geofenceService struct {
	areaRepo     repository.AreaRepository
	locationRepo repository.LocationRepository
	publisher    service.EventPublisher
	logger       *slog.Logger
	cfg          *config.Config

	// Per-user locks serializing evaluations. Two samples of the same user
	// must never be evaluated concurrently or the predecessor diff could be
	// computed against the wrong sample.
	mu        sync.Mutex
	userLocks map[uuid.UUID]*sync.Mutex
}

// NewGeofenceService creates the containment and transition detection engine.
func NewGeofenceService(
	areaRepo repository.AreaRepository,
	locationRepo repository.LocationRepository,
	publisher service.EventPublisher,
	logger *slog.Logger,
	cfg *config.Config,
) usecase.GeofenceUsecase {
	return &geofenceService{
		areaRepo:     areaRepo,
		locationRepo: locationRepo,
		publisher:    publisher,
		logger:       logger,
		cfg:          cfg,
		userLocks:    make(map[uuid.UUID]*sync.Mutex),
	}
}

// EvaluateLocation resolves containment for the sample at (point, ts), diffs
// it against the user's immediately preceding sample and dispatches the
// resulting ENTRY events. The full entries/exits set is computed before
// anything is dispatched; on error nothing is dispatched at all.
func (s *geofenceService) EvaluateLocation(ctx context.Context, userID uuid.UUID, point orb.Point, ts time.Time) (*entity.Evaluation, error) {
	if !geo.ValidPoint(point) {
		return nil, domainerrors.ErrInvalidCoordinates.WrapMessage("evaluate location")
	}

	// The area snapshot is user-independent, so it is fetched before taking
	// the per-user lock. One immutable snapshot serves both resolutions,
	// which keeps the diff deterministic even if areas change mid-flight.
	areas, err := s.areaRepo.FindActiveAreas(ctx)
	if err != nil {
		return nil, domainerrors.ErrDependencyUnavailable.WrapMessage("load active areas")
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	prev, err := s.locationRepo.FindLatestBefore(ctx, userID, ts)
	if err != nil && !errors.Is(err, repository.ErrSampleNotFound) {
		return nil, domainerrors.ErrDependencyUnavailable.WrapMessage("load previous sample")
	}

	currentSet := s.resolveContainment(ctx, point, areas)

	// First-ever sample: the previous containment set is empty by definition,
	// so every containing area is a fresh entry.
	previousSet := make(map[uuid.UUID]bool)
	if prev != nil {
		previousSet = s.resolveContainment(ctx, prev.Point, areas)
	}

	evaluation := diffContainment(userID, ts, areas, currentSet, previousSet)

	// Cancellation aborts before any event reaches the dispatch boundary.
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	s.dispatch(ctx, evaluation.Entries)
	if s.cfg.Geofence != nil && s.cfg.Geofence.DispatchExits {
		s.dispatch(ctx, evaluation.Exits)
	}

	return evaluation, nil
}

// CheckUserAreas resolves the user's latest stored sample against the active
// area snapshot. No events are emitted and nothing is persisted.
func (s *geofenceService) CheckUserAreas(ctx context.Context, userID uuid.UUID) (*usecase.UserAreasResult, error) {
	sample, err := s.locationRepo.FindLatestByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSampleNotFound) {
			return nil, domainerrors.ErrLocationNotFound.WrapMessage("check user areas")
		}

		return nil, domainerrors.ErrDependencyUnavailable.WrapMessage("load latest sample")
	}

	areas, err := s.ResolvePoint(ctx, sample.Point)
	if err != nil {
		return nil, err
	}

	return &usecase.UserAreasResult{Sample: sample, Areas: areas}, nil
}

// ResolvePoint resolves an arbitrary point against the active area snapshot.
func (s *geofenceService) ResolvePoint(ctx context.Context, point orb.Point) ([]*entity.Area, error) {
	if !geo.ValidPoint(point) {
		return nil, domainerrors.ErrInvalidCoordinates.WrapMessage("resolve point")
	}

	areas, err := s.areaRepo.FindActiveAreas(ctx)
	if err != nil {
		return nil, domainerrors.ErrDependencyUnavailable.WrapMessage("load active areas")
	}

	contained := s.resolveContainment(ctx, point, areas)

	result := make([]*entity.Area, 0, len(contained))
	for _, area := range areas {
		if contained[area.ID] {
			result = append(result, area)
		}
	}

	return result, nil
}

// resolveContainment evaluates the point against every active area of the
// snapshot with the pure geometry engine. Areas with invalid geometry are
// skipped with a warning instead of failing the resolution. Identical
// (point, snapshot) inputs always produce the identical set.
func (s *geofenceService) resolveContainment(ctx context.Context, point orb.Point, areas []*entity.Area) map[uuid.UUID]bool {
	contained := make(map[uuid.UUID]bool, len(areas))

	for _, area := range areas {
		if !area.IsActive() {
			continue
		}

		inside, err := geo.PointInMultiPolygon(point, area.Geometry)
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping area with invalid geometry",
				slog.String("area_id", area.ID.String()),
				slog.String("area_name", area.Name),
				slog.Any("error", err),
			)

			continue
		}

		if inside {
			contained[area.ID] = true
		}
	}

	return contained
}

// diffContainment classifies the state transitions between two containment
// sets. Iteration follows the snapshot order so the emitted events are
// deterministic for a given (sample, predecessor, snapshot) triple.
func diffContainment(userID uuid.UUID, ts time.Time, areas []*entity.Area, current, previous map[uuid.UUID]bool) *entity.Evaluation {
	evaluation := &entity.Evaluation{
		ContainedAreas: make([]uuid.UUID, 0, len(current)),
		Entries:        []entity.TransitionEvent{},
		Exits:          []entity.TransitionEvent{},
	}

	for _, area := range areas {
		inNow := current[area.ID]
		inBefore := previous[area.ID]

		if inNow {
			evaluation.ContainedAreas = append(evaluation.ContainedAreas, area.ID)
		}

		switch {
		case inNow && !inBefore:
			evaluation.Entries = append(evaluation.Entries, transitionEvent(userID, area, entity.TransitionEntry, ts))
		case !inNow && inBefore:
			evaluation.Exits = append(evaluation.Exits, transitionEvent(userID, area, entity.TransitionExit, ts))
		}
	}

	return evaluation
}

func transitionEvent(userID uuid.UUID, area *entity.Area, kind entity.TransitionKind, ts time.Time) entity.TransitionEvent {
	return entity.TransitionEvent{
		UserID:    userID,
		AreaID:    area.ID,
		AreaName:  area.Name,
		AlertType: area.AlertType,
		Kind:      kind,
		Timestamp: ts,
	}
}

// dispatch hands events to the alert boundary. Failures are warnings: the
// containment result is already computed and the location write has already
// succeeded, so a broken notification channel must not fail ingestion.
func (s *geofenceService) dispatch(ctx context.Context, events []entity.TransitionEvent) {
	requestID := deliverycontext.GetRequestIDFromContext(ctx)

	for i := range events {
		event := &events[i]
		alertEvent := &service.AlertEvent{
			RequestID: requestID,
			UserID:    event.UserID.String(),
			AreaID:    event.AreaID.String(),
			AreaName:  event.AreaName,
			AlertType: string(event.AlertType),
			Kind:      string(event.Kind),
			Timestamp: event.Timestamp,
		}

		if err := s.publisher.PublishAlertEvent(ctx, alertEvent); err != nil {
			s.logger.WarnContext(ctx, "Failed to dispatch transition event",
				slog.String("user_id", alertEvent.UserID),
				slog.String("area_id", alertEvent.AreaID),
				slog.String("kind", alertEvent.Kind),
				slog.Any("error", err),
			)
		}
	}
}

// userLock returns the serialization lock for a user, creating it on first use.
func (s *geofenceService) userLock(userID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}

	return lock
}
