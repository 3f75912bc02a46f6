package impl

import (
	"context"
	"testing"
	"time"

	"geofence/config"
	"geofence/internal/domain/entity"
	domainerrors "geofence/internal/domain/errors"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGeofenceFixture(t *testing.T, areas ...*entity.Area) (*geofenceService, *mockAreaRepo, *mockLocationRepo, *mockPublisher) {
	t.Helper()

	areaRepo := &mockAreaRepo{areas: areas}
	locationRepo := &mockLocationRepo{}
	publisher := &mockPublisher{}

	svc := NewGeofenceService(areaRepo, locationRepo, publisher, testLogger(), testConfig())

	return svc.(*geofenceService), areaRepo, locationRepo, publisher
}

// record appends a sample to the mock history the way the ingestion path
// would before the evaluation runs.
func record(t *testing.T, repo *mockLocationRepo, userID uuid.UUID, point orb.Point, ts time.Time) {
	t.Helper()

	require.NoError(t, repo.CreateSample(context.Background(), &entity.LocationSample{
		ID:        uuid.New(),
		UserID:    userID,
		Point:     point,
		Timestamp: ts,
	}))
}

func TestEvaluateLocationFirstSampleIsEntry(t *testing.T) {
	area := squareArea("campus", 0, 0, 10, 10)
	svc, _, locationRepo, publisher := newGeofenceFixture(t, area)

	userID := uuid.New()
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	point := orb.Point{5, 5}
	record(t, locationRepo, userID, point, ts)

	evaluation, err := svc.EvaluateLocation(context.Background(), userID, point, ts)
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{area.ID}, evaluation.ContainedAreas)
	require.Len(t, evaluation.Entries, 1)
	assert.Equal(t, entity.TransitionEntry, evaluation.Entries[0].Kind)
	assert.Equal(t, area.ID, evaluation.Entries[0].AreaID)
	assert.Empty(t, evaluation.Exits)

	events := publisher.published()
	require.Len(t, events, 1)
	assert.Equal(t, string(entity.TransitionEntry), events[0].Kind)
	assert.Equal(t, area.Name, events[0].AreaName)
}

func TestEvaluateLocationOutsideAllAreas(t *testing.T) {
	svc, _, locationRepo, publisher := newGeofenceFixture(t, squareArea("campus", 0, 0, 10, 10))

	userID := uuid.New()
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	point := orb.Point{50, 50}
	record(t, locationRepo, userID, point, ts)

	evaluation, err := svc.EvaluateLocation(context.Background(), userID, point, ts)
	require.NoError(t, err)

	assert.Empty(t, evaluation.ContainedAreas)
	assert.Empty(t, evaluation.Entries)
	assert.Empty(t, evaluation.Exits)
	assert.Empty(t, publisher.published())
}

func TestEvaluateLocationNoEventWhileStayingInside(t *testing.T) {
	svc, _, locationRepo, publisher := newGeofenceFixture(t, squareArea("campus", 0, 0, 10, 10))

	userID := uuid.New()
	t1 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)
	record(t, locationRepo, userID, orb.Point{3, 3}, t1)

	_, err := svc.EvaluateLocation(context.Background(), userID, orb.Point{3, 3}, t1)
	require.NoError(t, err)

	record(t, locationRepo, userID, orb.Point{4, 4}, t2)
	evaluation, err := svc.EvaluateLocation(context.Background(), userID, orb.Point{4, 4}, t2)
	require.NoError(t, err)

	assert.Len(t, evaluation.ContainedAreas, 1)
	assert.Empty(t, evaluation.Entries)
	assert.Empty(t, evaluation.Exits)
	// Only the first sample raised an event.
	assert.Len(t, publisher.published(), 1)
}

// A walk through two overlapping areas: outside, into the first, into the
// overlap, then out of both.
func TestEvaluateLocationEntryAndExitSequence(t *testing.T) {
	park := squareArea("park", 0, 0, 10, 10)
	plaza := squareArea("plaza", 5, 5, 15, 15)
	svc, _, locationRepo, publisher := newGeofenceFixture(t, park, plaza)

	userID := uuid.New()
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	steps := []struct {
		point       orb.Point
		wantEntries []uuid.UUID
		wantExits   []uuid.UUID
	}{
		{orb.Point{-5, -5}, nil, nil},
		{orb.Point{2, 2}, []uuid.UUID{park.ID}, nil},
		{orb.Point{7, 7}, []uuid.UUID{plaza.ID}, nil},
		{orb.Point{20, 20}, nil, []uuid.UUID{park.ID, plaza.ID}},
	}

	for idx, step := range steps {
		ts := base.Add(time.Duration(idx) * time.Minute)
		record(t, locationRepo, userID, step.point, ts)

		evaluation, err := svc.EvaluateLocation(context.Background(), userID, step.point, ts)
		require.NoError(t, err, "step %d", idx)

		gotEntries := make([]uuid.UUID, 0, len(evaluation.Entries))
		for _, event := range evaluation.Entries {
			gotEntries = append(gotEntries, event.AreaID)
		}
		gotExits := make([]uuid.UUID, 0, len(evaluation.Exits))
		for _, event := range evaluation.Exits {
			gotExits = append(gotExits, event.AreaID)
		}

		assert.ElementsMatch(t, step.wantEntries, gotEntries, "entries at step %d", idx)
		assert.ElementsMatch(t, step.wantExits, gotExits, "exits at step %d", idx)
	}

	// Exits are detected but not dispatched with the default configuration.
	for _, event := range publisher.published() {
		assert.Equal(t, string(entity.TransitionEntry), event.Kind)
	}
	assert.Len(t, publisher.published(), 2)
}

func TestEvaluateLocationExitDispatchConfigGated(t *testing.T) {
	area := squareArea("campus", 0, 0, 10, 10)
	areaRepo := &mockAreaRepo{areas: []*entity.Area{area}}
	locationRepo := &mockLocationRepo{}
	publisher := &mockPublisher{}

	cfg := testConfig()
	cfg.Geofence.DispatchExits = true
	svc := NewGeofenceService(areaRepo, locationRepo, publisher, testLogger(), cfg)

	userID := uuid.New()
	t1 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	record(t, locationRepo, userID, orb.Point{5, 5}, t1)
	_, err := svc.EvaluateLocation(context.Background(), userID, orb.Point{5, 5}, t1)
	require.NoError(t, err)

	record(t, locationRepo, userID, orb.Point{50, 50}, t2)
	evaluation, err := svc.EvaluateLocation(context.Background(), userID, orb.Point{50, 50}, t2)
	require.NoError(t, err)
	require.Len(t, evaluation.Exits, 1)

	events := publisher.published()
	require.Len(t, events, 2)
	assert.Equal(t, string(entity.TransitionEntry), events[0].Kind)
	assert.Equal(t, string(entity.TransitionExit), events[1].Kind)
}

// Re-evaluating the same sample must produce the same result: the
// predecessor lookup is strictly-before, so the sample never sees itself.
func TestEvaluateLocationIdempotentForSameSample(t *testing.T) {
	area := squareArea("campus", 0, 0, 10, 10)
	svc, _, locationRepo, _ := newGeofenceFixture(t, area)

	userID := uuid.New()
	t1 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	record(t, locationRepo, userID, orb.Point{50, 50}, t1)
	_, err := svc.EvaluateLocation(context.Background(), userID, orb.Point{50, 50}, t1)
	require.NoError(t, err)

	record(t, locationRepo, userID, orb.Point{5, 5}, t2)

	first, err := svc.EvaluateLocation(context.Background(), userID, orb.Point{5, 5}, t2)
	require.NoError(t, err)
	second, err := svc.EvaluateLocation(context.Background(), userID, orb.Point{5, 5}, t2)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, second.Entries, 1)
	assert.Equal(t, area.ID, second.Entries[0].AreaID)
}

func TestEvaluateLocationUsersAreIsolated(t *testing.T) {
	area := squareArea("campus", 0, 0, 10, 10)
	svc, _, locationRepo, _ := newGeofenceFixture(t, area)

	alice := uuid.New()
	bob := uuid.New()
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Alice has been inside for a while.
	record(t, locationRepo, alice, orb.Point{5, 5}, ts.Add(-time.Hour))
	record(t, locationRepo, alice, orb.Point{6, 6}, ts)
	evaluation, err := svc.EvaluateLocation(context.Background(), alice, orb.Point{6, 6}, ts)
	require.NoError(t, err)
	assert.Empty(t, evaluation.Entries)

	// Bob's first sample inside is still a fresh entry.
	record(t, locationRepo, bob, orb.Point{5, 5}, ts)
	evaluation, err = svc.EvaluateLocation(context.Background(), bob, orb.Point{5, 5}, ts)
	require.NoError(t, err)
	require.Len(t, evaluation.Entries, 1)
	assert.Equal(t, bob, evaluation.Entries[0].UserID)
}

func TestEvaluateLocationRejectsInvalidCoordinates(t *testing.T) {
	svc, _, _, publisher := newGeofenceFixture(t, squareArea("campus", 0, 0, 10, 10))

	_, err := svc.EvaluateLocation(context.Background(), uuid.New(), orb.Point{200, 95}, time.Now())
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrInvalidCoordinates.ErrorCode(), appErr.ErrorCode())
	assert.Empty(t, publisher.published())
}

func TestEvaluateLocationSkipsAreaWithDegenerateGeometry(t *testing.T) {
	good := squareArea("good", 0, 0, 10, 10)
	degenerate := squareArea("degenerate", 0, 0, 10, 10)
	degenerate.Geometry = orb.MultiPolygon{{{{0, 0}, {0, 0}, {0, 0}}}}

	svc, _, locationRepo, _ := newGeofenceFixture(t, degenerate, good)

	userID := uuid.New()
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	record(t, locationRepo, userID, orb.Point{5, 5}, ts)

	evaluation, err := svc.EvaluateLocation(context.Background(), userID, orb.Point{5, 5}, ts)
	require.NoError(t, err)

	// Only the valid area contributes to the result.
	assert.Equal(t, []uuid.UUID{good.ID}, evaluation.ContainedAreas)
	require.Len(t, evaluation.Entries, 1)
	assert.Equal(t, good.ID, evaluation.Entries[0].AreaID)
}

func TestEvaluateLocationInactiveAreasIgnored(t *testing.T) {
	inactive := squareArea("closed", 0, 0, 10, 10)
	inactive.Status = entity.AreaStatusInactive

	svc, _, locationRepo, publisher := newGeofenceFixture(t, inactive)

	userID := uuid.New()
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	record(t, locationRepo, userID, orb.Point{5, 5}, ts)

	evaluation, err := svc.EvaluateLocation(context.Background(), userID, orb.Point{5, 5}, ts)
	require.NoError(t, err)
	assert.Empty(t, evaluation.ContainedAreas)
	assert.Empty(t, publisher.published())
}

func TestEvaluateLocationDispatchFailureIsNotFatal(t *testing.T) {
	area := squareArea("campus", 0, 0, 10, 10)
	areaRepo := &mockAreaRepo{areas: []*entity.Area{area}}
	locationRepo := &mockLocationRepo{}
	publisher := &mockPublisher{publishErr: assert.AnError}

	svc := NewGeofenceService(areaRepo, locationRepo, publisher, testLogger(), testConfig())

	userID := uuid.New()
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	record(t, locationRepo, userID, orb.Point{5, 5}, ts)

	evaluation, err := svc.EvaluateLocation(context.Background(), userID, orb.Point{5, 5}, ts)
	require.NoError(t, err)
	require.Len(t, evaluation.Entries, 1)
}

func TestEvaluateLocationCancelledContextAbortsBeforeDispatch(t *testing.T) {
	svc, _, locationRepo, publisher := newGeofenceFixture(t, squareArea("campus", 0, 0, 10, 10))

	userID := uuid.New()
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	record(t, locationRepo, userID, orb.Point{5, 5}, ts)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.EvaluateLocation(ctx, userID, orb.Point{5, 5}, ts)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, publisher.published())
}

func TestCheckUserAreasResolvesLatestSample(t *testing.T) {
	area := squareArea("campus", 0, 0, 10, 10)
	svc, _, locationRepo, publisher := newGeofenceFixture(t, area)

	userID := uuid.New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	record(t, locationRepo, userID, orb.Point{50, 50}, base)
	record(t, locationRepo, userID, orb.Point{5, 5}, base.Add(time.Minute))

	result, err := svc.CheckUserAreas(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, orb.Point{5, 5}, result.Sample.Point)
	require.Len(t, result.Areas, 1)
	assert.Equal(t, area.ID, result.Areas[0].ID)
	// Read-only query: nothing is dispatched.
	assert.Empty(t, publisher.published())
}

func TestCheckUserAreasWithoutHistory(t *testing.T) {
	svc, _, _, _ := newGeofenceFixture(t, squareArea("campus", 0, 0, 10, 10))

	_, err := svc.CheckUserAreas(context.Background(), uuid.New())
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrLocationNotFound.ErrorCode(), appErr.ErrorCode())
}

func TestResolvePointAgainstSnapshot(t *testing.T) {
	park := squareArea("park", 0, 0, 10, 10)
	plaza := squareArea("plaza", 5, 5, 15, 15)
	svc, _, _, _ := newGeofenceFixture(t, park, plaza)

	areas, err := svc.ResolvePoint(context.Background(), orb.Point{7, 7})
	require.NoError(t, err)
	require.Len(t, areas, 2)

	areas, err = svc.ResolvePoint(context.Background(), orb.Point{2, 2})
	require.NoError(t, err)
	require.Len(t, areas, 1)
	assert.Equal(t, park.ID, areas[0].ID)
}

func TestEvaluateLocationAreaSnapshotUnavailable(t *testing.T) {
	areaRepo := &mockAreaRepo{findErr: assert.AnError}
	svc := NewGeofenceService(areaRepo, &mockLocationRepo{}, &mockPublisher{}, testLogger(), testConfig())

	_, err := svc.EvaluateLocation(context.Background(), uuid.New(), orb.Point{5, 5}, time.Now())
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrDependencyUnavailable.ErrorCode(), appErr.ErrorCode())
}

func TestEvaluateLocationConcurrentSameUserSerialized(t *testing.T) {
	area := squareArea("campus", 0, 0, 10, 10)
	svc, _, locationRepo, publisher := newGeofenceFixture(t, area)

	userID := uuid.New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	const n = 8
	for idx := 0; idx < n; idx++ {
		record(t, locationRepo, userID, orb.Point{5, 5}, base.Add(time.Duration(idx)*time.Second))
	}

	done := make(chan error, n)
	for idx := 0; idx < n; idx++ {
		go func(idx int) {
			_, err := svc.EvaluateLocation(context.Background(), userID, orb.Point{5, 5}, base.Add(time.Duration(idx)*time.Second))
			done <- err
		}(idx)
	}
	for idx := 0; idx < n; idx++ {
		require.NoError(t, <-done)
	}

	// Only the earliest sample has no predecessor inside, so exactly one
	// ENTRY is dispatched no matter how the evaluations interleave.
	assert.Len(t, publisher.published(), 1)
}

func TestNewGeofenceServiceConfigDefaults(t *testing.T) {
	cfg := &config.Config{}
	svc := NewGeofenceService(&mockAreaRepo{}, &mockLocationRepo{}, &mockPublisher{}, testLogger(), cfg)

	// A nil geofence section must not panic the dispatch gate.
	_, err := svc.EvaluateLocation(context.Background(), uuid.New(), orb.Point{1, 1}, time.Now())
	require.NoError(t, err)
}
